package types

import "time"

// Purchase is one redemption of reward points. Rows are append-only:
// never updated, never deleted.
type Purchase struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	ItemID       string    `db:"item_id"`
	ItemName     string    `db:"item_name"`
	PointsSpent  int       `db:"points_spent"`
	PurchaseDate time.Time `db:"purchase_date"`
}

// RewardItem is a catalog entry a lender can redeem points against.
// The catalog is read-only configuration; it is seeded, not edited by
// the application.
type RewardItem struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	PointCost   int    `db:"point_cost"`
	Category    string `db:"category"`
	ImageURL    string `db:"image_url"`
}
