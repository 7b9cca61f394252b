package model

import "time"

// Notification is the durable record behind every delivery channel. The
// store is the single source of truth; realtime push and email are
// best-effort mirrors of it.
type Notification struct {
	ID            int64        `json:"id"`
	RecipientID   string       `json:"recipient_id"`
	Kind          string       `json:"kind"`
	Title         string       `json:"title"`
	Body          string       `json:"body"`
	Context       EventContext `json:"context"`
	Read          bool         `json:"read"`
	EmailMirrored bool         `json:"email_mirrored"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// EventContext carries the event-specific payload of a notification.
// Trip events always fill the trip fields; Extra is the escape hatch
// for keys only a single event type needs.
type EventContext struct {
	TripID    *int64            `json:"trip_id,omitempty"`
	TripTitle string            `json:"trip_title,omitempty"`
	ActorID   string            `json:"actor_id,omitempty"`
	ActorName string            `json:"actor_name,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// PushPayload is what goes over a live stream connection: exactly the
// public, immutable fields of the record, so a push and a later fetch
// of the same id can never disagree.
type PushPayload struct {
	ID        int64        `json:"id"`
	Kind      string       `json:"kind"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	Context   EventContext `json:"context"`
	CreatedAt time.Time    `json:"created_at"`
}

func PushPayloadOf(n Notification) PushPayload {
	return PushPayload{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		Context:   n.Context,
		CreatedAt: n.CreatedAt,
	}
}
