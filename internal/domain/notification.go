package domain

import (
	"errors"
	"strings"
)

const (
	KindTripJoin     = "trip_join"
	KindTripLeave    = "trip_leave"
	KindTripUpdate   = "trip_update"
	KindTripDelete   = "trip_delete"
	KindTripReminder = "trip_reminder"
	KindSystem       = "system"
)

var (
	ErrInvalidKind = errors.New("invalid notification kind")
	ErrEmptyTitle  = errors.New("notification title is required")
	ErrEmptyBody   = errors.New("notification body is required")

	// ErrNotFound covers both an id that does not exist and an id owned
	// by a different recipient. Callers must not be able to tell the two
	// apart.
	ErrNotFound = errors.New("notification not found")
)

func IsValidKind(value string) bool {
	switch value {
	case KindTripJoin, KindTripLeave, KindTripUpdate, KindTripDelete, KindTripReminder, KindSystem:
		return true
	default:
		return false
	}
}

// ValidateNew checks the caller-supplied fields of a notification about
// to be created.
func ValidateNew(kind, title, body string) error {
	if !IsValidKind(kind) {
		return ErrInvalidKind
	}
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	return nil
}
