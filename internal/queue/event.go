package queue

import "github.com/google/uuid"

// TripEventMessage is the wire envelope the trip service publishes when
// something notification-worthy happens. One message fans out to every
// listed recipient.
type TripEventMessage struct {
	EventID      string   `json:"event_id"`
	Kind         string   `json:"kind"`
	RecipientIDs []string `json:"recipient_ids"`
	ActorID      string   `json:"actor_id"`
	ActorName    string   `json:"actor_name"`
	TripID       int64    `json:"trip_id"`
	TripTitle    string   `json:"trip_title"`
	WantsEmail   bool     `json:"wants_email"`
}

// Stamp assigns a fresh event id when the producer did not set one.
func (m *TripEventMessage) Stamp() {
	if m.EventID == "" {
		m.EventID = uuid.NewString()
	}
}
