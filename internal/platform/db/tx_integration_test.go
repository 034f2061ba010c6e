//go:build integration

package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"night-attendance-backend/internal/platform/db"
	"night-attendance-backend/internal/platform/db/dbtest"
)

func countPoints(t *testing.T, q db.DBTX) int {
	t.Helper()
	var n int
	require.NoError(t, q.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM geofence_points`).Scan(&n))
	return n
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	conn := dbtest.NewMySQL(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO geofence_points (sequence_order, latitude, longitude) VALUES (0, 1, 1)`)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, countPoints(t, conn))

	assert.Panics(t, func() {
		_ = db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO geofence_points (sequence_order, latitude, longitude) VALUES (0, 1, 1)`)
			panic("kaboom")
		})
	})
	assert.Zero(t, countPoints(t, conn))
}

func TestReadOnly_RejectsWrites(t *testing.T) {
	conn := dbtest.NewMySQL(t)
	ctx := context.Background()

	err := db.ReadOnly(ctx, conn, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO geofence_points (sequence_order, latitude, longitude) VALUES (0, 1, 1)`)
		return err
	})
	require.Error(t, err)
	assert.Zero(t, countPoints(t, conn))

	err = db.ReadOnly(ctx, conn, func(ctx context.Context, tx db.DBTX) error {
		assert.Zero(t, countPoints(t, tx))
		return nil
	})
	assert.NoError(t, err)
}
