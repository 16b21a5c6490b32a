package types

import (
	"time"
)

type PickupStatus string

const (
	PickupStatusPending             PickupStatus = "PENDING"
	PickupStatusPendingVerification PickupStatus = "PENDING_VERIFICATION"
	PickupStatusVerified            PickupStatus = "VERIFIED"
)

// CanTransitionTo reports whether next is a legal transition from s.
// VERIFIED is terminal.
func (s PickupStatus) CanTransitionTo(next PickupStatus) bool {
	switch s {
	case PickupStatusPending:
		return next == PickupStatusPendingVerification
	case PickupStatusPendingVerification:
		return next == PickupStatusVerified
	case PickupStatusVerified:
		return false
	default:
		return false
	}
}

func (s PickupStatus) Valid() bool {
	switch s {
	case PickupStatusPending, PickupStatusPendingVerification, PickupStatusVerified:
		return true
	}
	return false
}

type Pickup struct {
	ID       string `db:"id"`
	LenderID string `db:"lender_id"`

	ItemName            string    `db:"item_name"`
	ImageKey            *string   `db:"image_key"`
	RequestedPickupTime time.Time `db:"requested_pickup_time"`

	Status PickupStatus `db:"status"`

	CollectorContact

	AcceptedAt        *time.Time `db:"accepted_at"`
	VerifiedAt        *time.Time `db:"verified_at"`
	VerificationNotes *string    `db:"verification_notes"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CollectorContact is the collector block on a pickup. All fields are
// nil while the pickup is still PENDING.
type CollectorContact struct {
	CollectorID    *string `db:"collector_id"`
	CollectorName  *string `db:"collector_name"`
	CollectorEmail *string `db:"collector_email"`
	CollectorPhone *string `db:"collector_phone"`
}

// NewPickup carries the lender-supplied fields for scheduling a pickup.
type NewPickup struct {
	ItemName            string    `form:"item_name" json:"item_name"`
	RequestedPickupTime time.Time `form:"requested_pickup_time" json:"requested_pickup_time"`
}
