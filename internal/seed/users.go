package seed

import (
	"context"
	"errors"
	"fmt"

	"greencycle/internal/store"
	"greencycle/internal/utils"
	"greencycle/pkg/types"

	"github.com/k0kubun/pp/v3"
)

type demoUserSeed struct {
	ID            string
	Name          string
	Email         string
	ContactNumber string
	Role          types.UserRole
	Latitude      *float64
	Longitude     *float64
}

var demoUsers = []demoUserSeed{
	{ID: "11111111-1111-1111-1111-111111111111", Name: "Ava Williams", Email: "ava.williams+seed1@example.com", ContactNumber: "5550100001", Role: types.UserRoleLender, Latitude: utils.Float64Ptr(12.9716), Longitude: utils.Float64Ptr(77.5946)},
	{ID: "22222222-2222-2222-2222-222222222222", Name: "Liam Johnson", Email: "liam.johnson+seed2@example.com", ContactNumber: "5550100002", Role: types.UserRoleLender, Latitude: utils.Float64Ptr(12.9352), Longitude: utils.Float64Ptr(77.6245)},
	{ID: "33333333-3333-3333-3333-333333333333", Name: "Noah Brown", Email: "noah.brown+seed3@example.com", ContactNumber: "5550100003", Role: types.UserRoleCollector},
	{ID: "44444444-4444-4444-4444-444444444444", Name: "Mia Davis", Email: "mia.davis+seed4@example.com", ContactNumber: "5550100004", Role: types.UserRoleCollector},
}

func SeedDemoUsers(ctx context.Context, userRepo *store.UserRepository) error {
	seeded := 0
	for _, demo := range demoUsers {
		_, err := userRepo.User(ctx, demo.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return fmt.Errorf("failed to fetch demo user %s: %w", demo.ID, err)
		}

		newUser := &types.User{
			ID:            demo.ID,
			Role:          demo.Role,
			Name:          demo.Name,
			Email:         demo.Email,
			ContactNumber: demo.ContactNumber,
			Latitude:      demo.Latitude,
			Longitude:     demo.Longitude,
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			return fmt.Errorf("failed to create demo user %s: %w", demo.ID, err)
		}

		seeded++
	}

	pp.Printf("seeded %d demo users\n", seeded)

	return nil
}
