package types

import "time"

type UserRole string

const (
	UserRoleLender    UserRole = "lender"
	UserRoleCollector UserRole = "collector"
)

func (r UserRole) Valid() bool {
	return r == UserRoleLender || r == UserRoleCollector
}

type User struct {
	ID            string    `db:"id"`
	Role          UserRole  `db:"role"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	ContactNumber string    `db:"contact_number"`
	Latitude      *float64  `db:"latitude"`
	Longitude     *float64  `db:"longitude"`
	Points        int       `db:"points"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// UpdateProfile carries the fields a user may edit on their own row.
type UpdateProfile struct {
	Name          *string  `form:"name" json:"name"`
	ContactNumber *string  `form:"contact_number" json:"contact_number"`
	Latitude      *float64 `form:"latitude" json:"latitude"`
	Longitude     *float64 `form:"longitude" json:"longitude"`
}
