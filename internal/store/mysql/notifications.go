package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"tripnotify/internal/domain"
	"tripnotify/internal/model"
)

const notificationColumns = "id, recipient_id, kind, title, body, context, is_read, email_mirrored, created_at, updated_at"

func (s *Store) Insert(ctx context.Context, n model.Notification) (model.Notification, error) {
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = n.CreatedAt
	n.Read = false
	n.EmailMirrored = false

	contextJSON, err := json.Marshal(n.Context)
	if err != nil {
		return model.Notification{}, err
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO notifications (recipient_id, kind, title, body, context, is_read, email_mirrored, created_at, updated_at) VALUES (?, ?, ?, ?, ?, FALSE, FALSE, ?, ?)",
		n.RecipientID, n.Kind, n.Title, n.Body, contextJSON, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		s.log.Error("sql insert notification failed",
			zap.String("recipient_id", n.RecipientID),
			zap.String("kind", n.Kind),
			zap.Error(err),
		)
		return model.Notification{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		s.log.Error("sql last insert id failed", zap.Error(err))
		return model.Notification{}, err
	}
	n.ID = id
	return n, nil
}

func (s *Store) ListByRecipient(ctx context.Context, recipientID string, page, pageSize int) ([]model.Notification, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ?", recipientID,
	).Scan(&total); err != nil {
		s.log.Error("sql count notifications failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE recipient_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		recipientID, pageSize, offset,
	)
	if err != nil {
		s.log.Error("sql list notifications failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var result []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			s.log.Error("sql scan notification failed", zap.Error(err))
			return nil, 0, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *Store) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = FALSE", recipientID,
	).Scan(&count)
	if err != nil {
		s.log.Error("sql count unread failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (s *Store) MarkRead(ctx context.Context, recipientID string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, recipientID)
	for _, id := range ids {
		args = append(args, id)
	}

	// Ownership check first: any missing or foreign id fails the whole
	// call without revealing which case it was.
	var owned int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND id IN ("+placeholders+")",
		args...,
	).Scan(&owned); err != nil {
		s.log.Error("sql mark read ownership check failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}
	if owned != int64(len(dedupe(ids))) {
		return 0, domain.ErrNotFound
	}

	updateArgs := append([]any{time.Now().UTC()}, args...)
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE, updated_at = ? WHERE recipient_id = ? AND is_read = FALSE AND id IN ("+placeholders+")",
		updateArgs...,
	)
	if err != nil {
		s.log.Error("sql mark read failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Store) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE, updated_at = ? WHERE recipient_id = ? AND is_read = FALSE",
		time.Now().UTC(), recipientID,
	)
	if err != nil {
		s.log.Error("sql mark all read failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Store) MarkEmailMirrored(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET email_mirrored = TRUE, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		s.log.Error("sql mark email mirrored failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteOwned(ctx context.Context, recipientID string, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE recipient_id = ? AND id = ?",
		recipientID, id,
	)
	if err != nil {
		s.log.Error("sql delete notification failed", zap.String("recipient_id", recipientID), zap.Int64("id", id), zap.Error(err))
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanNotification(rows *sql.Rows) (model.Notification, error) {
	var n model.Notification
	var contextJSON []byte
	if err := rows.Scan(
		&n.ID, &n.RecipientID, &n.Kind, &n.Title, &n.Body,
		&contextJSON, &n.Read, &n.EmailMirrored, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return model.Notification{}, err
	}
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &n.Context); err != nil {
			return model.Notification{}, err
		}
	}
	return n, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
