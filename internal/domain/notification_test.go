package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidKind(t *testing.T) {
	t.Run("valid kinds", func(t *testing.T) {
		valid := []string{
			KindTripJoin,
			KindTripLeave,
			KindTripUpdate,
			KindTripDelete,
			KindTripReminder,
			KindSystem,
		}
		for _, kind := range valid {
			require.True(t, IsValidKind(kind), kind)
		}
	})

	t.Run("invalid kinds", func(t *testing.T) {
		invalid := []string{"", "trip", "TRIP_JOIN", "email", "trip_join "}
		for _, kind := range invalid {
			require.False(t, IsValidKind(kind), kind)
		}
	})
}

func TestValidateNew(t *testing.T) {
	t.Run("accepts a complete notification", func(t *testing.T) {
		require.NoError(t, ValidateNew(KindTripJoin, "New traveler", "Alice joined your trip"))
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		require.ErrorIs(t, ValidateNew("booking", "title", "body"), ErrInvalidKind)
	})

	t.Run("rejects blank title", func(t *testing.T) {
		require.ErrorIs(t, ValidateNew(KindSystem, "   ", "body"), ErrEmptyTitle)
	})

	t.Run("rejects blank body", func(t *testing.T) {
		require.ErrorIs(t, ValidateNew(KindSystem, "title", ""), ErrEmptyBody)
	})
}
