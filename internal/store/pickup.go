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

const pickupTableName = "greencycle.pickups"

var pickupColumns = utils.StructTagValues(types.Pickup{})

type PickupRepository struct {
	pool *pgxpool.Pool
}

func NewPickupRepository(pool *pgxpool.Pool) *PickupRepository {
	return &PickupRepository{pool: pool}
}

func (r *PickupRepository) Pickup(ctx context.Context, pickupID string) (*types.Pickup, error) {

	query, args, err := psql().Select(pickupColumns...).From(pickupTableName).
		Where(sq.Eq{"id": pickupID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pickup query: %w", err)
	}

	var pickup = new(types.Pickup)
	err = pgxscan.Get(ctx, r.pool, pickup, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrPickupNotFound
		}
		return nil, fmt.Errorf("failed to fetch pickup: %w", err)
	}

	return pickup, nil
}

func (r *PickupRepository) Create(ctx context.Context, pickup *types.Pickup) error {

	now := time.Now()
	pickup.ID = utils.NanoID()
	pickup.CreatedAt = now
	pickup.UpdatedAt = now

	query, args, err := psql().Insert(pickupTableName).
		SetMap(utils.StructToMap(pickup)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert pickup query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create pickup")

}

// Pending returns every pickup still waiting for a collector, newest first.
func (r *PickupRepository) Pending(ctx context.Context) ([]*types.Pickup, error) {

	query, args, err := psql().Select(pickupColumns...).From(pickupTableName).
		Where(sq.Eq{"status": types.PickupStatusPending}).
		OrderBy("created_at DESC NULLS LAST", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pending pickups query: %w", err)
	}

	var pickups = make([]*types.Pickup, 0)
	err = pgxscan.Select(ctx, r.pool, &pickups, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending pickups: %w", err)
	}

	return pickups, nil
}

func (r *PickupRepository) ByLender(ctx context.Context, lenderID string) ([]*types.Pickup, error) {

	query, args, err := psql().Select(pickupColumns...).From(pickupTableName).
		Where(sq.Eq{"lender_id": lenderID}).
		OrderBy("created_at DESC NULLS LAST", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate lender pickups query: %w", err)
	}

	var pickups = make([]*types.Pickup, 0)
	err = pgxscan.Select(ctx, r.pool, &pickups, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lender pickups: %w", err)
	}

	return pickups, nil
}

func (r *PickupRepository) ByCollector(ctx context.Context, collectorID string) ([]*types.Pickup, error) {

	query, args, err := psql().Select(pickupColumns...).From(pickupTableName).
		Where(sq.Eq{"collector_id": collectorID}).
		OrderBy("created_at DESC NULLS LAST", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate collector pickups query: %w", err)
	}

	var pickups = make([]*types.Pickup, 0)
	err = pgxscan.Select(ctx, r.pool, &pickups, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collector pickups: %w", err)
	}

	return pickups, nil
}

// Accept assigns a collector with a single conditional write keyed on
// the pickup still being PENDING. When two collectors race, the row
// condition lets exactly one write through; the loser gets
// ErrStateConflict and the winner's collector block is untouched.
func (r *PickupRepository) Accept(ctx context.Context, pickupID string, collector types.CollectorContact, acceptedAt time.Time) error {

	query, args, err := psql().Update(pickupTableName).
		SetMap(utils.StructToMap(collector)).
		Set("status", types.PickupStatusPendingVerification).
		Set("accepted_at", acceptedAt).
		Set("updated_at", acceptedAt).
		Where(sq.Eq{"id": pickupID, "status": types.PickupStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate accept pickup query for pickup %s: %w", pickupID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to accept pickup %s: %w", pickupID, err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.Pickup(ctx, pickupID); err != nil {
			return err
		}
		return types.ErrStateConflict
	}

	return nil
}

// Verify completes a pickup and awards the lender's reward points in
// one transaction. The status update and the point increment either
// both commit or neither does; a retried verify fails the status
// condition, so the increment is applied at most once per pickup.
func (r *PickupRepository) Verify(ctx context.Context, pickupID, lenderID string, notes *string, verifiedAt time.Time, rewardPoints int) error {

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {

		builder := psql().Update(pickupTableName).
			Set("status", types.PickupStatusVerified).
			Set("verified_at", verifiedAt).
			Set("updated_at", verifiedAt).
			Where(sq.Eq{
				"id":        pickupID,
				"lender_id": lenderID,
				"status":    types.PickupStatusPendingVerification,
			})
		if notes != nil {
			builder = builder.Set("verification_notes", notes)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate verify pickup query for pickup %s: %w", pickupID, err)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to verify pickup %s: %w", pickupID, err)
		}

		if tag.RowsAffected() == 0 {
			return r.classifyVerifyFailure(ctx, tx, pickupID, lenderID)
		}

		query, args, err = psql().Update(userTableName).
			Set("points", sq.Expr("points + ?", rewardPoints)).
			Set("updated_at", verifiedAt).
			Where(sq.Eq{"id": lenderID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate reward points query for lender %s: %w", lenderID, err)
		}

		tag, err = tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to award points to lender %s: %w", lenderID, err)
		}

		if tag.RowsAffected() == 0 {
			return types.ErrUserNotFound
		}

		return nil
	})
}

// classifyVerifyFailure turns a zero-row verify update into the typed
// error the caller should surface.
func (r *PickupRepository) classifyVerifyFailure(ctx context.Context, tx pgx.Tx, pickupID, lenderID string) error {

	query, args, err := psql().Select("lender_id", "status").From(pickupTableName).
		Where(sq.Eq{"id": pickupID}).
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate verify-failure query for pickup %s: %w", pickupID, err)
	}

	var row struct {
		LenderID string             `db:"lender_id"`
		Status   types.PickupStatus `db:"status"`
	}
	err = pgxscan.Get(ctx, tx, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return types.ErrPickupNotFound
		}
		return fmt.Errorf("failed to inspect pickup %s after verify conflict: %w", pickupID, err)
	}

	if row.LenderID != lenderID {
		return types.ErrUnauthorized
	}

	return types.ErrStateConflict
}

// SetImageKey attaches an uploaded image to a pickup, scoped to the
// owning lender.
func (r *PickupRepository) SetImageKey(ctx context.Context, pickupID, lenderID, imageKey string) error {

	query, args, err := psql().Update(pickupTableName).
		Set("image_key", imageKey).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": pickupID, "lender_id": lenderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set image key query for pickup %s: %w", pickupID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set image key on pickup %s: %w", pickupID, err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.Pickup(ctx, pickupID); err != nil {
			return err
		}
		return types.ErrUnauthorized
	}

	return nil
}
