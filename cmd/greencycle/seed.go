package main

import (
	"context"
	"fmt"

	"greencycle/internal/db"
	"greencycle/internal/seed"
	"greencycle/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with the reward catalog and demo users",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		rewardRepo := store.NewRewardRepository(pool)
		userRepo := store.NewUserRepository(pool)

		logrus.Info("Seeding reward catalog...")
		if err := seed.SeedRewards(ctx, rewardRepo); err != nil {
			return fmt.Errorf("failed to seed rewards: %w", err)
		}

		logrus.Info("Seeding demo users...")
		if err := seed.SeedDemoUsers(ctx, userRepo); err != nil {
			return fmt.Errorf("failed to seed demo users: %w", err)
		}

		logrus.Info("Seeding complete")

		return nil
	},
}
