package utils

import (
	"errors"
	"testing"

	"greencycle/pkg/types"

	"github.com/stretchr/testify/require"
)

func TestStructTagValuesFlattensEmbedded(t *testing.T) {
	columns := StructTagValues(types.Pickup{})

	require.Contains(t, columns, "id")
	require.Contains(t, columns, "lender_id")
	require.Contains(t, columns, "item_name")
	require.Contains(t, columns, "status")
	// embedded CollectorContact columns appear in the flat list
	require.Contains(t, columns, "collector_id")
	require.Contains(t, columns, "collector_phone")
	require.NotContains(t, columns, "")
}

func TestStructToMapFlattensEmbedded(t *testing.T) {
	collectorID := "collector-1"
	pickup := &types.Pickup{
		ID:       "pickup-1",
		LenderID: "lender-1",
		ItemName: "Old Laptop",
		Status:   types.PickupStatusPendingVerification,
		CollectorContact: types.CollectorContact{
			CollectorID: &collectorID,
		},
	}

	m := StructToMap(pickup)

	require.Equal(t, "pickup-1", m["id"])
	require.Equal(t, "Old Laptop", m["item_name"])
	require.Equal(t, types.PickupStatusPendingVerification, m["status"])
	require.Equal(t, &collectorID, m["collector_id"])
}

func TestErrorWrapOrNil(t *testing.T) {
	require.NoError(t, ErrorWrapOrNil(nil, "failed to fetch pickup"))

	base := errors.New("boom")
	wrapped := ErrorWrapOrNil(base, "failed to fetch pickup")
	require.ErrorIs(t, wrapped, base)
	require.Equal(t, "failed to fetch pickup: boom", wrapped.Error())

	require.Same(t, base, ErrorWrapOrNil(base, ""))
}
