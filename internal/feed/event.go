package feed

import (
	"time"

	"greencycle/pkg/types"
)

type EventType string

const (
	EventPickupScheduled EventType = "pickup.scheduled"
	EventPickupAccepted  EventType = "pickup.accepted"
	EventPickupVerified  EventType = "pickup.verified"
)

// Event describes one pickup change. Events are advisory: subscribers
// use them to refresh their listings, and the store remains the source
// of truth. Delivery is eventually consistent.
type Event struct {
	Type     EventType          `json:"type"`
	PickupID string             `json:"pickup_id"`
	LenderID string             `json:"lender_id"`
	Status   types.PickupStatus `json:"status"`
	At       time.Time          `json:"at"`
}
