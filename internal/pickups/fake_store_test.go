package pickups

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"greencycle/internal/feed"
	"greencycle/pkg/types"
)

// fakeStore reproduces the repository's conditional-write semantics in
// memory: every mutation checks the expected prior status under one
// lock, the way the SQL row conditions do, and failed preconditions
// leave the record untouched.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int
	pickups map[string]*types.Pickup
	points  map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pickups: make(map[string]*types.Pickup),
		points:  make(map[string]int),
	}
}

func (f *fakeStore) Create(ctx context.Context, pickup *types.Pickup) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	pickup.ID = fmt.Sprintf("pickup-%d", f.nextID)
	now := time.Now()
	pickup.CreatedAt = now
	pickup.UpdatedAt = now

	stored := *pickup
	f.pickups[pickup.ID] = &stored
	return nil
}

func (f *fakeStore) Pickup(ctx context.Context, pickupID string) (*types.Pickup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pickup, ok := f.pickups[pickupID]
	if !ok {
		return nil, types.ErrPickupNotFound
	}

	copied := *pickup
	return &copied, nil
}

func (f *fakeStore) Pending(ctx context.Context) ([]*types.Pickup, error) {
	return f.list(func(p *types.Pickup) bool { return p.Status == types.PickupStatusPending }), nil
}

func (f *fakeStore) ByLender(ctx context.Context, lenderID string) ([]*types.Pickup, error) {
	return f.list(func(p *types.Pickup) bool { return p.LenderID == lenderID }), nil
}

func (f *fakeStore) ByCollector(ctx context.Context, collectorID string) ([]*types.Pickup, error) {
	return f.list(func(p *types.Pickup) bool {
		return p.CollectorID != nil && *p.CollectorID == collectorID
	}), nil
}

func (f *fakeStore) list(match func(*types.Pickup) bool) []*types.Pickup {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*types.Pickup, 0)
	for _, pickup := range f.pickups {
		if match(pickup) {
			copied := *pickup
			out = append(out, &copied)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out
}

func (f *fakeStore) Accept(ctx context.Context, pickupID string, collector types.CollectorContact, acceptedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	pickup, ok := f.pickups[pickupID]
	if !ok {
		return types.ErrPickupNotFound
	}
	if pickup.Status != types.PickupStatusPending {
		return types.ErrStateConflict
	}

	pickup.CollectorContact = collector
	pickup.Status = types.PickupStatusPendingVerification
	pickup.AcceptedAt = &acceptedAt
	pickup.UpdatedAt = acceptedAt
	return nil
}

func (f *fakeStore) Verify(ctx context.Context, pickupID, lenderID string, notes *string, verifiedAt time.Time, rewardPoints int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	pickup, ok := f.pickups[pickupID]
	if !ok {
		return types.ErrPickupNotFound
	}
	if pickup.LenderID != lenderID {
		return types.ErrUnauthorized
	}
	if pickup.Status != types.PickupStatusPendingVerification {
		return types.ErrStateConflict
	}

	pickup.Status = types.PickupStatusVerified
	pickup.VerifiedAt = &verifiedAt
	pickup.VerificationNotes = notes
	pickup.UpdatedAt = verifiedAt
	f.points[lenderID] += rewardPoints
	return nil
}

func (f *fakeStore) SetImageKey(ctx context.Context, pickupID, lenderID, imageKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	pickup, ok := f.pickups[pickupID]
	if !ok {
		return types.ErrPickupNotFound
	}
	if pickup.LenderID != lenderID {
		return types.ErrUnauthorized
	}

	pickup.ImageKey = &imageKey
	return nil
}

func (f *fakeStore) pointsFor(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.points[userID]
}

// capturePublisher records every event pushed to the feed.
type capturePublisher struct {
	mu     sync.Mutex
	events []feed.Event
}

func (p *capturePublisher) Publish(ctx context.Context, event feed.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) published() []feed.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]feed.Event(nil), p.events...)
}
