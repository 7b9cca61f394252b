package repository

import (
	"context"

	"tripnotify/internal/model"
)

// NotificationStore is durable CRUD over notification records. Every
// operation except Insert is scoped by recipient id; an id owned by a
// different recipient behaves exactly like a missing id.
type NotificationStore interface {
	Insert(ctx context.Context, n model.Notification) (model.Notification, error)

	// ListByRecipient returns one page, newest first, plus the total
	// record count for the recipient at query time.
	ListByRecipient(ctx context.Context, recipientID string, page, pageSize int) ([]model.Notification, int64, error)

	CountUnread(ctx context.Context, recipientID string) (int64, error)

	// MarkRead flips the given owned ids to read and reports how many
	// actually transitioned. Already-read ids are a no-op and do not
	// count. If any id is missing or foreign-owned, the whole call fails
	// with domain.ErrNotFound and nothing is updated.
	MarkRead(ctx context.Context, recipientID string, ids []int64) (int64, error)

	MarkAllRead(ctx context.Context, recipientID string) (int64, error)

	MarkEmailMirrored(ctx context.Context, id int64) error

	// DeleteOwned removes one owned record and reports whether anything
	// was deleted.
	DeleteOwned(ctx context.Context, recipientID string, id int64) (bool, error)
}
