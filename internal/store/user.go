package store

import (
	"context"
	"fmt"
	"time"

	"greencycle/internal/utils"
	"greencycle/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTableName = "greencycle.users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// UpdateProfile touches only the caller-editable profile fields.
// Points are never writable through this path; they move exclusively
// inside the verify and redeem transactions.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, update types.UpdateProfile) error {

	builder := psql().Update(userTableName).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID})

	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
	}
	if update.ContactNumber != nil {
		builder = builder.Set("contact_number", *update.ContactNumber)
	}
	if update.Latitude != nil {
		builder = builder.Set("latitude", update.Latitude)
	}
	if update.Longitude != nil {
		builder = builder.Set("longitude", update.Longitude)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update profile query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile for user %s: %w", userID, err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}

	return nil
}
