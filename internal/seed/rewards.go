package seed

import (
	"context"
	"fmt"

	"greencycle/internal/store"
	"greencycle/pkg/types"

	"github.com/k0kubun/pp/v3"
)

// catalogItems mirrors the product's launch catalog. Point costs are
// configuration, not coordinator logic.
var catalogItems = []*types.RewardItem{
	{
		ID:          "reward-water-bottle",
		Name:        "Eco-Friendly Water Bottle",
		Description: "Premium stainless steel, keeps drinks cold for 24 hours",
		PointCost:   200,
		Category:    "lifestyle",
		ImageURL:    "https://images.unsplash.com/photo-1602143407151-7111542de6e8?auto=format&fit=crop&w=300&h=200",
	},
	{
		ID:          "reward-seed-kit",
		Name:        "Plant Seeds Kit",
		Description: "Organic vegetable and flower seeds with guide",
		PointCost:   300,
		Category:    "garden",
		ImageURL:    "https://images.unsplash.com/photo-1523348837708-15d4a09cfac2?auto=format&fit=crop&w=300&h=200",
	},
	{
		ID:          "reward-recycling-bins",
		Name:        "Recycling Bin Set",
		Description: "3-compartment sorting system with labels",
		PointCost:   800,
		Category:    "home",
		ImageURL:    "https://images.unsplash.com/photo-1611284446314-60a58ac0deb9?auto=format&fit=crop&w=300&h=200",
	},
	{
		ID:          "reward-solar-power-bank",
		Name:        "Solar Power Bank",
		Description: "10000mAh capacity with dual USB ports",
		PointCost:   1000,
		Category:    "electronics",
		ImageURL:    "https://images.unsplash.com/photo-1558449028-b53a39d100fc?auto=format&fit=crop&w=300&h=200",
	},
	{
		ID:          "reward-bamboo-utensils",
		Name:        "Bamboo Utensil Set",
		Description: "Eco-friendly dining set with carrying case",
		PointCost:   400,
		Category:    "lifestyle",
		ImageURL:    "https://images.unsplash.com/photo-1610701596007-11502861dcfa?auto=format&fit=crop&w=300&h=200",
	},
}

func SeedRewards(ctx context.Context, rewardRepo *store.RewardRepository) error {
	for _, item := range catalogItems {
		if err := rewardRepo.Upsert(ctx, item); err != nil {
			return fmt.Errorf("failed to seed reward %s: %w", item.ID, err)
		}
	}

	pp.Printf("seeded %d reward items\n", len(catalogItems))

	return nil
}
