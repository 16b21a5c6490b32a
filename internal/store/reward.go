package store

import (
	"context"
	"fmt"

	"greencycle/internal/utils"
	"greencycle/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const rewardTableName = "greencycle.rewards"

var rewardColumns = utils.StructTagValues(types.RewardItem{})

// RewardRepository reads the redemption catalog. The catalog is
// seeded configuration; the application never mutates it outside the
// seed command.
type RewardRepository struct {
	pool *pgxpool.Pool
}

func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

func (r *RewardRepository) Rewards(ctx context.Context) ([]*types.RewardItem, error) {

	query, args, err := psql().Select(rewardColumns...).From(rewardTableName).
		OrderBy("point_cost", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate rewards query: %w", err)
	}

	var rewards = make([]*types.RewardItem, 0)
	err = pgxscan.Select(ctx, r.pool, &rewards, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rewards: %w", err)
	}

	return rewards, nil
}

func (r *RewardRepository) Reward(ctx context.Context, itemID string) (*types.RewardItem, error) {

	query, args, err := psql().Select(rewardColumns...).From(rewardTableName).
		Where(sq.Eq{"id": itemID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reward query: %w", err)
	}

	var reward = new(types.RewardItem)
	err = pgxscan.Get(ctx, r.pool, reward, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to fetch reward: %w", err)
	}

	return reward, nil
}

// Upsert is used by the seed command to load the catalog.
func (r *RewardRepository) Upsert(ctx context.Context, item *types.RewardItem) error {

	query, args, err := psql().Insert(rewardTableName).
		SetMap(utils.StructToMap(item)).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, point_cost = EXCLUDED.point_cost, category = EXCLUDED.category, image_url = EXCLUDED.image_url").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert reward query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert reward")
}
