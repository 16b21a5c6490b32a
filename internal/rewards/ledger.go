package rewards

import (
	"context"
	"fmt"
	"time"

	"greencycle/pkg/types"

	"github.com/sirupsen/logrus"
)

// Catalog is the read-only reward item collaborator.
type Catalog interface {
	Rewards(ctx context.Context) ([]*types.RewardItem, error)
	Reward(ctx context.Context, itemID string) (*types.RewardItem, error)
}

// Store executes redemptions. Redeem must deduct the balance and
// append the purchase atomically, and must return
// types.ErrInsufficientPoints without writing anything when the
// balance cannot cover the cost.
type Store interface {
	Redeem(ctx context.Context, userID string, item *types.RewardItem, purchasedAt time.Time) (*types.Purchase, error)
	ByUser(ctx context.Context, userID string) ([]*types.Purchase, error)
}

// Ledger lets lenders spend verified-pickup points on catalog items.
type Ledger struct {
	logger  *logrus.Logger
	catalog Catalog
	store   Store
	now     func() time.Time
}

func NewLedger(logger *logrus.Logger, catalog Catalog, store Store) *Ledger {
	return &Ledger{
		logger:  logger,
		catalog: catalog,
		store:   store,
		now:     time.Now,
	}
}

func (l *Ledger) Catalog(ctx context.Context) ([]*types.RewardItem, error) {
	return l.catalog.Rewards(ctx)
}

// Redeem spends the caller's points on a catalog item. Collectors do
// not accrue points and cannot redeem.
func (l *Ledger) Redeem(ctx context.Context, session *types.Session, itemID string) (*types.Purchase, error) {
	if session.Role != types.UserRoleLender {
		return nil, fmt.Errorf("%w: only lenders can redeem points", types.ErrUnauthorized)
	}

	item, err := l.catalog.Reward(ctx, itemID)
	if err != nil {
		return nil, err
	}

	purchase, err := l.store.Redeem(ctx, session.UserID, item, l.now())
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"user_id":      session.UserID,
		"item_id":      item.ID,
		"points_spent": item.PointCost,
	}).Info("reward redeemed")

	return purchase, nil
}

// History lists the caller's redemptions, newest first.
func (l *Ledger) History(ctx context.Context, session *types.Session) ([]*types.Purchase, error) {
	return l.store.ByUser(ctx, session.UserID)
}
