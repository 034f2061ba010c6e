package geofence

import (
	"context"
	"database/sql"
	"fmt"

	"night-attendance-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// ListBoundaryPoints returns the boundary ordered by sequence_order.
func (s *Store) ListBoundaryPoints(ctx context.Context) ([]BoundaryPoint, error) {
	return listBoundaryPoints(ctx, s.db)
}

func listBoundaryPoints(ctx context.Context, q db.DBTX) ([]BoundaryPoint, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT sequence_order, latitude, longitude
	FROM geofence_points
	ORDER BY sequence_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query geofence points: %w", err)
	}
	defer rows.Close()

	out := make([]BoundaryPoint, 0, 32)
	for rows.Next() {
		var p BoundaryPoint
		if err := rows.Scan(&p.SequenceOrder, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("scan geofence point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceBoundary swaps the whole boundary in one transaction.
func (s *Store) ReplaceBoundary(ctx context.Context, points []BoundaryPoint) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM geofence_points`); err != nil {
			return fmt.Errorf("clear geofence points: %w", err)
		}
		for _, p := range points {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO geofence_points (sequence_order, latitude, longitude)
			VALUES (?, ?, ?)`, p.SequenceOrder, p.Latitude, p.Longitude); err != nil {
				return fmt.Errorf("insert geofence point %d: %w", p.SequenceOrder, err)
			}
		}
		return nil
	})
}
