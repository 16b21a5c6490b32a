package store

import (
	"context"
	"fmt"
	"time"

	"greencycle/internal/utils"
	"greencycle/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const purchaseTableName = "greencycle.purchases"

var purchaseColumns = utils.StructTagValues(types.Purchase{})

type PurchaseRepository struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

// Redeem spends points on a catalog item. The balance decrement is
// conditional on points >= cost, so a stale read can never push the
// balance negative: two concurrent redemptions serialize on the user
// row and the second re-evaluates against the decremented balance.
// The decrement and the purchase insert commit together or not at all.
func (r *PurchaseRepository) Redeem(ctx context.Context, userID string, item *types.RewardItem, purchasedAt time.Time) (*types.Purchase, error) {

	purchase := &types.Purchase{
		ID:           utils.NanoID(),
		UserID:       userID,
		ItemID:       item.ID,
		ItemName:     item.Name,
		PointsSpent:  item.PointCost,
		PurchaseDate: purchasedAt,
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {

		query, args, err := psql().Update(userTableName).
			Set("points", sq.Expr("points - ?", item.PointCost)).
			Set("updated_at", purchasedAt).
			Where(sq.Eq{"id": userID}).
			Where(sq.GtOrEq{"points": item.PointCost}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate deduct points query for user %s: %w", userID, err)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to deduct points for user %s: %w", userID, err)
		}

		if tag.RowsAffected() == 0 {
			return r.classifyRedeemFailure(ctx, tx, userID)
		}

		query, args, err = psql().Insert(purchaseTableName).
			SetMap(utils.StructToMap(purchase)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate insert purchase query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		return utils.ErrorWrapOrNil(err, "failed to record purchase")
	})
	if err != nil {
		return nil, err
	}

	return purchase, nil
}

func (r *PurchaseRepository) classifyRedeemFailure(ctx context.Context, tx pgx.Tx, userID string) error {

	query, args, err := psql().Select("id").From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate redeem-failure query for user %s: %w", userID, err)
	}

	var id string
	err = pgxscan.Get(ctx, tx, &id, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return types.ErrUserNotFound
		}
		return fmt.Errorf("failed to inspect user %s after redeem conflict: %w", userID, err)
	}

	return types.ErrInsufficientPoints
}

func (r *PurchaseRepository) ByUser(ctx context.Context, userID string) ([]*types.Purchase, error) {

	query, args, err := psql().Select(purchaseColumns...).From(purchaseTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("purchase_date DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate purchases query: %w", err)
	}

	var purchases = make([]*types.Purchase, 0)
	err = pgxscan.Select(ctx, r.pool, &purchases, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	return purchases, nil
}
