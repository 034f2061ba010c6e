//go:build integration

package geofence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"night-attendance-backend/internal/platform/db/dbtest"
)

func TestStore_ReplaceBoundary(t *testing.T) {
	conn := dbtest.NewMySQL(t)
	store := NewStore(conn)
	ctx := context.Background()

	pts, err := store.ListBoundaryPoints(ctx)
	require.NoError(t, err)
	assert.Empty(t, pts)

	// 順序はsequence_orderで決まり、挿入順には依存しない
	require.NoError(t, store.ReplaceBoundary(ctx, []BoundaryPoint{
		{SequenceOrder: 2, Latitude: 26.8351, Longitude: 75.6601},
		{SequenceOrder: 0, Latitude: 26.8301, Longitude: 75.6401},
		{SequenceOrder: 1, Latitude: 26.8401, Longitude: 75.6501},
	}))
	pts, err = store.ListBoundaryPoints(ctx)
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, 0, pts[0].SequenceOrder)
	assert.InDelta(t, 26.8301, pts[0].Latitude, 1e-9)
	assert.Equal(t, 2, pts[2].SequenceOrder)

	require.NoError(t, store.ReplaceBoundary(ctx, []BoundaryPoint{
		{SequenceOrder: 0, Latitude: 1, Longitude: 1},
	}))
	pts, err = store.ListBoundaryPoints(ctx)
	require.NoError(t, err)
	assert.Len(t, pts, 1)

	// a failing batch leaves the previous boundary in place
	err = store.ReplaceBoundary(ctx, []BoundaryPoint{
		{SequenceOrder: 0, Latitude: 2, Longitude: 2},
		{SequenceOrder: 0, Latitude: 3, Longitude: 3},
	})
	require.Error(t, err)
	pts, err = store.ListBoundaryPoints(ctx)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.InDelta(t, 1.0, pts[0].Latitude, 1e-9)
}
