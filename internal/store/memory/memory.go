package memory

import (
	"sync"

	"go.uber.org/zap"

	"tripnotify/internal/model"
)

// Store keeps notifications in process memory. It backs local
// development and tests; production runs against MySQL.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	records []model.Notification
	log     *zap.Logger
}

func New(logger *zap.Logger) *Store {
	return &Store{nextID: 1, log: logger}
}
