package server

import (
	"testing"

	"greencycle/pkg/types"

	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestValidateRegisterInput(t *testing.T) {
	valid := registerInput{
		Name:          "Ava Williams",
		Email:         "ava@example.com",
		Password:      "Sup3rSecret",
		ContactNumber: "9876543210",
		Latitude:      floatPtr(12.9716),
		Longitude:     floatPtr(77.5946),
	}

	require.NoError(t, validateRegisterInput(valid, types.UserRoleLender))

	// collectors do not need a location
	noLocation := valid
	noLocation.Latitude = nil
	noLocation.Longitude = nil
	require.NoError(t, validateRegisterInput(noLocation, types.UserRoleCollector))

	cases := []struct {
		name   string
		mutate func(*registerInput)
		role   types.UserRole
	}{
		{"missing name", func(in *registerInput) { in.Name = "" }, types.UserRoleLender},
		{"bad email", func(in *registerInput) { in.Email = "not-an-email" }, types.UserRoleLender},
		{"missing password", func(in *registerInput) { in.Password = "" }, types.UserRoleLender},
		{"short phone", func(in *registerInput) { in.ContactNumber = "12345" }, types.UserRoleLender},
		{"phone with symbols", func(in *registerInput) { in.ContactNumber = "98765-4321" }, types.UserRoleLender},
		{"unknown role", func(in *registerInput) {}, types.UserRole("admin")},
		{"lender without location", func(in *registerInput) { in.Latitude = nil }, types.UserRoleLender},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			input := valid
			c.mutate(&input)
			require.ErrorIs(t, validateRegisterInput(input, c.role), types.ErrValidation)
		})
	}
}
