package pickups

import (
	"time"

	"greencycle/pkg/types"
)

// Countdown is the time left before a pickup's requested slot. It is
// display-only; nothing expires a pending pickup server-side.
type Countdown struct {
	Remaining time.Duration `json:"remaining"`
	Expired   bool          `json:"expired"`
}

// RemainingTime computes the countdown for a pickup at the given
// instant. A zero or missing requested time counts as already expired.
func RemainingTime(pickup *types.Pickup, now time.Time) Countdown {
	if pickup.RequestedPickupTime.IsZero() {
		return Countdown{Expired: true}
	}

	remaining := pickup.RequestedPickupTime.Sub(now)
	if remaining <= 0 {
		return Countdown{Expired: true}
	}

	return Countdown{Remaining: remaining}
}
