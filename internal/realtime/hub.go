package realtime

import (
	"sync"

	"tripnotify/internal/model"
)

// Client is one live stream connection for one recipient. A recipient
// may hold several (multiple tabs, devices).
type Client struct {
	RecipientID string
	Ch          chan model.PushPayload
}

// Hub maps authenticated recipients to their live connections. It is
// purely in-memory and rebuilt empty on restart; nothing here is
// authoritative beyond "is this recipient reachable right now".
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.RecipientID] == nil {
		h.clients[client.RecipientID] = make(map[*Client]struct{})
	}
	h.clients[client.RecipientID][client] = struct{}{}
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[client.RecipientID]
	if set == nil {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.RecipientID)
	}
}

// ActiveClients returns the live connections for a recipient, possibly
// none.
func (h *Hub) ActiveClients(recipientID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.clients[recipientID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(set))
	for client := range set {
		out = append(out, client)
	}
	return out
}
