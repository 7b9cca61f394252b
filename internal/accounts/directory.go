package accounts

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
)

// Directory resolves a recipient id to an email address. It is the only
// thing this service needs from the account subsystem.
type Directory interface {
	// ResolveEmail returns ("", false, nil) when the recipient has no
	// address on file; that is not an error.
	ResolveEmail(ctx context.Context, recipientID string) (string, bool, error)
}

// NewDirectory picks the backend matching the notification store: the
// shared MySQL pool when one is configured, otherwise an in-memory
// directory for development and tests.
func NewDirectory(db *sql.DB, logger *zap.Logger) Directory {
	if db == nil {
		return NewMemoryDirectory()
	}
	return &sqlDirectory{db: db, log: logger}
}

type sqlDirectory struct {
	db  *sql.DB
	log *zap.Logger
}

func (d *sqlDirectory) ResolveEmail(ctx context.Context, recipientID string) (string, bool, error) {
	var email string
	err := d.db.QueryRowContext(ctx,
		"SELECT email FROM users WHERE id = ?", recipientID,
	).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		d.log.Error("sql resolve email failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return "", false, err
	}
	if email == "" {
		return "", false, nil
	}
	return email, true, nil
}
