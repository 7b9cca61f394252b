package memory

import (
	"context"
	"time"

	"tripnotify/internal/domain"
	"tripnotify/internal/model"
)

func (s *Store) Insert(_ context.Context, n model.Notification) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = n.CreatedAt
	n.Read = false
	n.EmailMirrored = false
	s.records = append(s.records, n)
	return n, nil
}

func (s *Store) ListByRecipient(_ context.Context, recipientID string, page, pageSize int) ([]model.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Insert order doubles as creation order, so a reverse scan yields
	// newest first.
	var owned []model.Notification
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].RecipientID == recipientID {
			owned = append(owned, s.records[i])
		}
	}

	total := int64(len(owned))
	offset := (page - 1) * pageSize
	if offset >= len(owned) {
		return nil, total, nil
	}
	end := offset + pageSize
	if end > len(owned) {
		end = len(owned)
	}
	items := make([]model.Notification, end-offset)
	copy(items, owned[offset:end])
	return items, total, nil
}

func (s *Store) CountUnread(_ context.Context, recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, record := range s.records {
		if record.RecipientID == recipientID && !record.Read {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkRead(_ context.Context, recipientID string, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make(map[int64]int, len(ids))
	for i, record := range s.records {
		if record.RecipientID == recipientID {
			owned[record.ID] = i
		}
	}
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			return 0, domain.ErrNotFound
		}
	}

	var updated int64
	now := time.Now().UTC()
	for _, id := range ids {
		idx := owned[id]
		if s.records[idx].Read {
			continue
		}
		s.records[idx].Read = true
		s.records[idx].UpdatedAt = now
		updated++
	}
	return updated, nil
}

func (s *Store) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	now := time.Now().UTC()
	for i := range s.records {
		if s.records[i].RecipientID != recipientID || s.records[i].Read {
			continue
		}
		s.records[i].Read = true
		s.records[i].UpdatedAt = now
		updated++
	}
	return updated, nil
}

func (s *Store) MarkEmailMirrored(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].EmailMirrored = true
			s.records[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Store) DeleteOwned(_ context.Context, recipientID string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id && s.records[i].RecipientID == recipientID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
