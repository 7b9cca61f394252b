package realtime

import (
	"go.uber.org/zap"

	"tripnotify/internal/model"
)

// Publisher pushes persisted notifications to whoever is connected.
// Delivery is best effort: no connections is success, a full client
// buffer drops the payload for that client only. The durable record
// stays fetchable either way.
type Publisher struct {
	hub *Hub
	log *zap.Logger
}

func NewPublisher(hub *Hub, logger *zap.Logger) *Publisher {
	return &Publisher{hub: hub, log: logger}
}

func (p *Publisher) Publish(n model.Notification) {
	clients := p.hub.ActiveClients(n.RecipientID)
	if len(clients) == 0 {
		return
	}
	payload := model.PushPayloadOf(n)
	for _, client := range clients {
		select {
		case client.Ch <- payload:
		default:
			// Slow consumer, drop. Never stall the other clients.
			p.log.Warn("dropping push for slow stream client",
				zap.String("recipient_id", n.RecipientID),
				zap.Int64("notification_id", n.ID),
			)
		}
	}
}
