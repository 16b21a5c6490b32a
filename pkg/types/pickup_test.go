package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickupStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    PickupStatus
		to      PickupStatus
		allowed bool
	}{
		{PickupStatusPending, PickupStatusPendingVerification, true},
		{PickupStatusPending, PickupStatusVerified, false},
		{PickupStatusPending, PickupStatusPending, false},
		{PickupStatusPendingVerification, PickupStatusVerified, true},
		{PickupStatusPendingVerification, PickupStatusPending, false},
		{PickupStatusPendingVerification, PickupStatusPendingVerification, false},
		{PickupStatusVerified, PickupStatusPending, false},
		{PickupStatusVerified, PickupStatusPendingVerification, false},
		{PickupStatusVerified, PickupStatusVerified, false},
		{PickupStatus("CANCELLED"), PickupStatusPending, false},
	}

	for _, c := range cases {
		require.Equalf(t, c.allowed, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestPickupStatusValid(t *testing.T) {
	require.True(t, PickupStatusPending.Valid())
	require.True(t, PickupStatusPendingVerification.Valid())
	require.True(t, PickupStatusVerified.Valid())
	require.False(t, PickupStatus("").Valid())
	require.False(t, PickupStatus("pending").Valid())
}
