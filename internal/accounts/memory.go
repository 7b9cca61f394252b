package accounts

import (
	"context"
	"sync"
)

// MemoryDirectory is the in-process Directory used when no MySQL pool
// is configured.
type MemoryDirectory struct {
	mu        sync.RWMutex
	addresses map[string]string
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{addresses: make(map[string]string)}
}

func (d *MemoryDirectory) Put(recipientID, email string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addresses[recipientID] = email
}

func (d *MemoryDirectory) ResolveEmail(_ context.Context, recipientID string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	email, ok := d.addresses[recipientID]
	if !ok || email == "" {
		return "", false, nil
	}
	return email, true, nil
}
