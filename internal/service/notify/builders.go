package notify

import (
	"context"
	"fmt"

	"tripnotify/internal/domain"
	"tripnotify/internal/model"
)

// TripEvent names the domain event a trip route handler observed. The
// notification pipeline only records and delivers it.
type TripEvent struct {
	Kind      string
	ActorID   string
	ActorName string
	TripID    int64
	TripTitle string
}

// BuildTripEvent turns a trip event into notification content. One
// parameterized builder covers all trip kinds; there is no state here,
// just templating.
func BuildTripEvent(ev TripEvent) (title, body string, ctx model.EventContext, err error) {
	switch ev.Kind {
	case domain.KindTripJoin:
		title = fmt.Sprintf("New traveler on %q", ev.TripTitle)
		body = fmt.Sprintf("%s joined your trip %q.", ev.ActorName, ev.TripTitle)
	case domain.KindTripLeave:
		title = fmt.Sprintf("Traveler left %q", ev.TripTitle)
		body = fmt.Sprintf("%s left your trip %q.", ev.ActorName, ev.TripTitle)
	case domain.KindTripUpdate:
		title = fmt.Sprintf("Trip %q was updated", ev.TripTitle)
		body = fmt.Sprintf("%s updated the trip %q. Check the latest details.", ev.ActorName, ev.TripTitle)
	case domain.KindTripDelete:
		title = fmt.Sprintf("Trip %q was cancelled", ev.TripTitle)
		body = fmt.Sprintf("%s cancelled the trip %q.", ev.ActorName, ev.TripTitle)
	case domain.KindTripReminder:
		title = fmt.Sprintf("Upcoming trip %q", ev.TripTitle)
		body = fmt.Sprintf("Your trip %q is coming up soon.", ev.TripTitle)
	default:
		return "", "", model.EventContext{}, domain.ErrInvalidKind
	}

	tripID := ev.TripID
	ctx = model.EventContext{
		TripID:    &tripID,
		TripTitle: ev.TripTitle,
		ActorID:   ev.ActorID,
		ActorName: ev.ActorName,
	}
	return title, body, ctx, nil
}

func (s *Service) notifyTripEvent(ctx context.Context, recipientID string, ev TripEvent, wantsEmail bool) (model.Notification, error) {
	title, body, eventCtx, err := BuildTripEvent(ev)
	if err != nil {
		return model.Notification{}, err
	}
	return s.Create(ctx, CreateInput{
		RecipientID: recipientID,
		Kind:        ev.Kind,
		Title:       title,
		Body:        body,
		Context:     eventCtx,
		WantsEmail:  wantsEmail,
	})
}

func (s *Service) NotifyTripJoin(ctx context.Context, organizerID string, ev TripEvent, wantsEmail bool) (model.Notification, error) {
	ev.Kind = domain.KindTripJoin
	return s.notifyTripEvent(ctx, organizerID, ev, wantsEmail)
}

func (s *Service) NotifyTripLeave(ctx context.Context, organizerID string, ev TripEvent, wantsEmail bool) (model.Notification, error) {
	ev.Kind = domain.KindTripLeave
	return s.notifyTripEvent(ctx, organizerID, ev, wantsEmail)
}

func (s *Service) NotifyTripUpdate(ctx context.Context, recipientID string, ev TripEvent, wantsEmail bool) (model.Notification, error) {
	ev.Kind = domain.KindTripUpdate
	return s.notifyTripEvent(ctx, recipientID, ev, wantsEmail)
}
