package pickups

import (
	"context"
	"fmt"
	"strings"
	"time"

	"greencycle/internal/feed"
	"greencycle/internal/utils"
	"greencycle/pkg/types"

	"github.com/sirupsen/logrus"
)

// RewardPoints is awarded to the lender on every verified pickup.
const RewardPoints = 100

// Store is the slice of the pickup store the coordinator needs. The
// implementation must make Accept and Verify conditional on the
// expected prior status so that lost races surface as
// types.ErrStateConflict without touching the row.
type Store interface {
	Create(ctx context.Context, pickup *types.Pickup) error
	Pickup(ctx context.Context, pickupID string) (*types.Pickup, error)
	Pending(ctx context.Context) ([]*types.Pickup, error)
	ByLender(ctx context.Context, lenderID string) ([]*types.Pickup, error)
	ByCollector(ctx context.Context, collectorID string) ([]*types.Pickup, error)
	Accept(ctx context.Context, pickupID string, collector types.CollectorContact, acceptedAt time.Time) error
	Verify(ctx context.Context, pickupID, lenderID string, notes *string, verifiedAt time.Time, rewardPoints int) error
	SetImageKey(ctx context.Context, pickupID, lenderID, imageKey string) error
}

// Publisher pushes change events to the live feed. Publish failures
// never fail a mutation; the feed is advisory.
type Publisher interface {
	Publish(ctx context.Context, event feed.Event) error
}

// Coordinator owns the pickup lifecycle: who may trigger each
// transition and what each transition writes.
type Coordinator struct {
	logger    *logrus.Logger
	store     Store
	publisher Publisher
	now       func() time.Time
}

func NewCoordinator(logger *logrus.Logger, store Store, publisher Publisher) *Coordinator {
	return &Coordinator{
		logger:    logger,
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Schedule creates a PENDING pickup owned by the calling lender.
func (c *Coordinator) Schedule(ctx context.Context, session *types.Session, input types.NewPickup) (*types.Pickup, error) {
	if session.Role != types.UserRoleLender {
		return nil, fmt.Errorf("%w: only lenders can schedule pickups", types.ErrUnauthorized)
	}

	itemName := strings.TrimSpace(input.ItemName)
	if itemName == "" {
		return nil, fmt.Errorf("%w: item name is required", types.ErrValidation)
	}
	if input.RequestedPickupTime.IsZero() {
		return nil, fmt.Errorf("%w: requested pickup time is required", types.ErrValidation)
	}

	pickup := &types.Pickup{
		LenderID:            session.UserID,
		ItemName:            itemName,
		RequestedPickupTime: input.RequestedPickupTime,
		Status:              types.PickupStatusPending,
	}

	if err := c.store.Create(ctx, pickup); err != nil {
		return nil, err
	}

	c.publish(ctx, feed.EventPickupScheduled, pickup)

	return pickup, nil
}

// Accept assigns the calling collector to a PENDING pickup. Any
// collector may accept any pending pickup; the first conditional write
// wins and later attempts get types.ErrStateConflict.
func (c *Coordinator) Accept(ctx context.Context, session *types.Session, pickupID string) (*types.Pickup, error) {
	if session.Role != types.UserRoleCollector {
		return nil, fmt.Errorf("%w: only collectors can accept pickups", types.ErrUnauthorized)
	}

	contact := types.CollectorContact{
		CollectorID:    utils.StringPtr(session.UserID),
		CollectorName:  utils.StringPtr(session.Name),
		CollectorEmail: utils.StringPtr(session.Email),
		CollectorPhone: utils.StringPtr(session.Phone),
	}

	if err := c.store.Accept(ctx, pickupID, contact, c.now()); err != nil {
		return nil, err
	}

	pickup, err := c.store.Pickup(ctx, pickupID)
	if err != nil {
		return nil, err
	}

	c.publish(ctx, feed.EventPickupAccepted, pickup)

	return pickup, nil
}

// Verify marks a pickup VERIFIED and awards the lender RewardPoints.
// Only the owning lender may verify, and only from
// PENDING_VERIFICATION. The status write and the point award are one
// transaction, so a retried call after a timeout can never award a
// second increment: it fails the status precondition instead.
func (c *Coordinator) Verify(ctx context.Context, session *types.Session, pickupID, notes string) (*types.Pickup, error) {
	if session.Role != types.UserRoleLender {
		return nil, fmt.Errorf("%w: only lenders can verify pickups", types.ErrUnauthorized)
	}

	var notesPtr *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		notesPtr = &trimmed
	}

	if err := c.store.Verify(ctx, pickupID, session.UserID, notesPtr, c.now(), RewardPoints); err != nil {
		return nil, err
	}

	pickup, err := c.store.Pickup(ctx, pickupID)
	if err != nil {
		return nil, err
	}

	c.publish(ctx, feed.EventPickupVerified, pickup)

	return pickup, nil
}

// Available lists every pickup a collector could still accept.
func (c *Coordinator) Available(ctx context.Context) ([]*types.Pickup, error) {
	return c.store.Pending(ctx)
}

func (c *Coordinator) ForLender(ctx context.Context, lenderID string) ([]*types.Pickup, error) {
	return c.store.ByLender(ctx, lenderID)
}

func (c *Coordinator) ForCollector(ctx context.Context, collectorID string) ([]*types.Pickup, error) {
	return c.store.ByCollector(ctx, collectorID)
}

// ForSession lists the caller's own pickups: scheduled ones for a
// lender, accepted ones for a collector.
func (c *Coordinator) ForSession(ctx context.Context, session *types.Session) ([]*types.Pickup, error) {
	switch session.Role {
	case types.UserRoleLender:
		return c.ForLender(ctx, session.UserID)
	case types.UserRoleCollector:
		return c.ForCollector(ctx, session.UserID)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", types.ErrUnauthorized, session.Role)
	}
}

func (c *Coordinator) Pickup(ctx context.Context, pickupID string) (*types.Pickup, error) {
	return c.store.Pickup(ctx, pickupID)
}

// AttachImage stores the blob key of an uploaded item photo on the
// caller's own pickup.
func (c *Coordinator) AttachImage(ctx context.Context, session *types.Session, pickupID, imageKey string) error {
	if session.Role != types.UserRoleLender {
		return fmt.Errorf("%w: only lenders can attach pickup images", types.ErrUnauthorized)
	}

	return c.store.SetImageKey(ctx, pickupID, session.UserID, imageKey)
}

func (c *Coordinator) publish(ctx context.Context, eventType feed.EventType, pickup *types.Pickup) {
	if c.publisher == nil {
		return
	}

	event := feed.Event{
		Type:     eventType,
		PickupID: pickup.ID,
		LenderID: pickup.LenderID,
		Status:   pickup.Status,
		At:       c.now(),
	}

	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.WithError(err).WithField("pickup_id", pickup.ID).Warn("failed to publish pickup change event")
	}
}
