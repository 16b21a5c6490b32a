package pickups

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"greencycle/internal/feed"
	"greencycle/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var (
	lenderSession = &types.Session{
		UserID: "lender-1",
		Role:   types.UserRoleLender,
		Name:   "Ava Williams",
		Email:  "ava@example.com",
		Phone:  "5550100001",
	}
	otherLenderSession = &types.Session{
		UserID: "lender-2",
		Role:   types.UserRoleLender,
		Name:   "Liam Johnson",
		Email:  "liam@example.com",
		Phone:  "5550100002",
	}
	collectorSession = &types.Session{
		UserID: "collector-1",
		Role:   types.UserRoleCollector,
		Name:   "Noah Brown",
		Email:  "noah@example.com",
		Phone:  "5550100003",
	}
	otherCollectorSession = &types.Session{
		UserID: "collector-2",
		Role:   types.UserRoleCollector,
		Name:   "Mia Davis",
		Email:  "mia@example.com",
		Phone:  "5550100004",
	}
)

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeStore, *capturePublisher) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := newFakeStore()
	publisher := &capturePublisher{}
	return NewCoordinator(logger, store, publisher), store, publisher
}

func schedule(t *testing.T, c *Coordinator, session *types.Session, itemName string) *types.Pickup {
	t.Helper()

	pickup, err := c.Schedule(context.Background(), session, types.NewPickup{
		ItemName:            itemName,
		RequestedPickupTime: time.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)
	return pickup
}

func TestScheduleCreatesPendingPickup(t *testing.T) {
	c, _, publisher := newTestCoordinator(t)

	pickup := schedule(t, c, lenderSession, "Old Laptop")

	require.NotEmpty(t, pickup.ID)
	require.Equal(t, "lender-1", pickup.LenderID)
	require.Equal(t, types.PickupStatusPending, pickup.Status)
	require.Nil(t, pickup.CollectorID)
	require.Nil(t, pickup.AcceptedAt)
	require.Nil(t, pickup.VerifiedAt)

	events := publisher.published()
	require.Len(t, events, 1)
	require.Equal(t, feed.EventPickupScheduled, events[0].Type)
}

func TestScheduleValidation(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	_, err := c.Schedule(context.Background(), lenderSession, types.NewPickup{
		ItemName:            "   ",
		RequestedPickupTime: time.Now().Add(time.Hour),
	})
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = c.Schedule(context.Background(), lenderSession, types.NewPickup{ItemName: "Old Laptop"})
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = c.Schedule(context.Background(), collectorSession, types.NewPickup{
		ItemName:            "Old Laptop",
		RequestedPickupTime: time.Now().Add(time.Hour),
	})
	require.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestAcceptAssignsCollector(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	created := schedule(t, c, lenderSession, "CRT Monitor")

	accepted, err := c.Accept(context.Background(), collectorSession, created.ID)
	require.NoError(t, err)

	require.Equal(t, types.PickupStatusPendingVerification, accepted.Status)
	require.NotNil(t, accepted.CollectorID)
	require.Equal(t, "collector-1", *accepted.CollectorID)
	require.Equal(t, "Noah Brown", *accepted.CollectorName)
	require.NotNil(t, accepted.AcceptedAt)
}

func TestAcceptRequiresCollectorRole(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	created := schedule(t, c, lenderSession, "CRT Monitor")

	_, err := c.Accept(context.Background(), lenderSession, created.ID)
	require.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestAcceptUnknownPickup(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	_, err := c.Accept(context.Background(), collectorSession, "missing")
	require.ErrorIs(t, err, types.ErrPickupNotFound)
}

// The second collector to accept must lose with a state conflict and
// must not displace the winner's collector block.
func TestAcceptSecondCollectorLoses(t *testing.T) {
	c, store, _ := newTestCoordinator(t)
	created := schedule(t, c, lenderSession, "Broken Printer")

	_, err := c.Accept(context.Background(), collectorSession, created.ID)
	require.NoError(t, err)

	_, err = c.Accept(context.Background(), otherCollectorSession, created.ID)
	require.ErrorIs(t, err, types.ErrStateConflict)

	current, err := store.Pickup(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "collector-1", *current.CollectorID)
	require.Equal(t, types.PickupStatusPendingVerification, current.Status)
}

func TestAcceptConcurrentRace(t *testing.T) {
	c, store, _ := newTestCoordinator(t)
	created := schedule(t, c, lenderSession, "Dead Microwave")

	sessions := []*types.Session{collectorSession, otherCollectorSession}
	errs := make([]error, len(sessions))

	var wg sync.WaitGroup
	for i, session := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Accept(context.Background(), session, created.ID)
		}()
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, types.ErrStateConflict):
			conflicts++
		default:
			t.Fatalf("unexpected accept error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, conflicts)

	current, err := store.Pickup(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, current.CollectorID)
}

func TestVerifyRequiresOwningLender(t *testing.T) {
	c, store, _ := newTestCoordinator(t)
	created := schedule(t, c, lenderSession, "Old Router")

	_, err := c.Accept(context.Background(), collectorSession, created.ID)
	require.NoError(t, err)

	_, err = c.Verify(context.Background(), otherLenderSession, created.ID, "")
	require.ErrorIs(t, err, types.ErrUnauthorized)

	current, err := store.Pickup(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, types.PickupStatusPendingVerification, current.Status)
	require.Zero(t, store.pointsFor("lender-2"))
}

func TestVerifyRequiresPendingVerification(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	created := schedule(t, c, lenderSession, "Old Router")

	_, err := c.Verify(context.Background(), lenderSession, created.ID, "")
	require.ErrorIs(t, err, types.ErrStateConflict)
}

func TestVerifyAwardsPointsExactlyOnce(t *testing.T) {
	c, store, _ := newTestCoordinator(t)
	created := schedule(t, c, lenderSession, "Old Laptop")

	_, err := c.Accept(context.Background(), collectorSession, created.ID)
	require.NoError(t, err)

	verified, err := c.Verify(context.Background(), lenderSession, created.ID, "left at doorstep")
	require.NoError(t, err)
	require.Equal(t, types.PickupStatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedAt)
	require.Equal(t, "left at doorstep", *verified.VerificationNotes)
	require.Equal(t, RewardPoints, store.pointsFor("lender-1"))

	// A client retry after a timeout replays the call; the status
	// precondition rejects it and no second increment is applied.
	_, err = c.Verify(context.Background(), lenderSession, created.ID, "left at doorstep")
	require.ErrorIs(t, err, types.ErrStateConflict)
	require.Equal(t, RewardPoints, store.pointsFor("lender-1"))
}

func TestAvailableListsOnlyPending(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	first := schedule(t, c, lenderSession, "Old Laptop")
	second := schedule(t, c, lenderSession, "Old Phone")

	_, err := c.Accept(context.Background(), collectorSession, first.ID)
	require.NoError(t, err)

	available, err := c.Available(context.Background())
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, second.ID, available[0].ID)
	for _, pickup := range available {
		require.Equal(t, types.PickupStatusPending, pickup.Status)
	}
}

func TestForSessionSplitsByRole(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	mine := schedule(t, c, lenderSession, "Old Laptop")
	theirs := schedule(t, c, otherLenderSession, "Old TV")

	_, err := c.Accept(context.Background(), collectorSession, theirs.ID)
	require.NoError(t, err)

	lenderList, err := c.ForSession(context.Background(), lenderSession)
	require.NoError(t, err)
	require.Len(t, lenderList, 1)
	require.Equal(t, mine.ID, lenderList[0].ID)

	collectorList, err := c.ForSession(context.Background(), collectorSession)
	require.NoError(t, err)
	require.Len(t, collectorList, 1)
	require.Equal(t, theirs.ID, collectorList[0].ID)
}

// Full lifecycle: schedule, accept, verify, with the reward landing on
// the lender's balance and every transition on the feed.
func TestLifecycleEndToEnd(t *testing.T) {
	c, store, publisher := newTestCoordinator(t)

	created, err := c.Schedule(context.Background(), lenderSession, types.NewPickup{
		ItemName:            "Old Laptop",
		RequestedPickupTime: time.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, types.PickupStatusPending, created.Status)

	accepted, err := c.Accept(context.Background(), collectorSession, created.ID)
	require.NoError(t, err)
	require.Equal(t, types.PickupStatusPendingVerification, accepted.Status)
	require.Equal(t, "collector-1", *accepted.CollectorID)

	verified, err := c.Verify(context.Background(), lenderSession, created.ID, "left at doorstep")
	require.NoError(t, err)
	require.Equal(t, types.PickupStatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedAt)
	require.Equal(t, 100, store.pointsFor("lender-1"))

	eventTypes := make([]feed.EventType, 0)
	for _, event := range publisher.published() {
		eventTypes = append(eventTypes, event.Type)
	}
	require.Equal(t, []feed.EventType{feed.EventPickupScheduled, feed.EventPickupAccepted, feed.EventPickupVerified}, eventTypes)
}

func TestAttachImage(t *testing.T) {
	c, store, _ := newTestCoordinator(t)
	created := schedule(t, c, lenderSession, "Old Laptop")

	require.NoError(t, c.AttachImage(context.Background(), lenderSession, created.ID, "ewaste-images/lender-1/abc-laptop.jpg"))

	err := c.AttachImage(context.Background(), collectorSession, created.ID, "nope.jpg")
	require.ErrorIs(t, err, types.ErrUnauthorized)

	current, err := store.Pickup(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "ewaste-images/lender-1/abc-laptop.jpg", *current.ImageKey)
}
