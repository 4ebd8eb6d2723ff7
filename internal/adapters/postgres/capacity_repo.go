package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/orbitcap/orbitcap/internal/pkg/capacity"
)

// CapacityRepo implements ports.CapacityRepository with pgx.
type CapacityRepo struct {
	db *DB
}

// NewCapacityRepo creates a new CapacityRepo.
func NewCapacityRepo(db *DB) *CapacityRepo {
	return &CapacityRepo{db: db}
}

// ReplaceAll swaps the stored grid for the given points in one transaction,
// so readers never observe a half-written grid.
func (r *CapacityRepo) ReplaceAll(ctx context.Context, points []capacity.GridPoint) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE capacity_grid`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(`
			INSERT INTO capacity_grid (altitude_km, inclination_deg, max_payload_kg)
			VALUES ($1, $2, $3)
		`, p.AltitudeKm, p.InclinationDeg, p.MaxPayloadKg)
	}
	br := tx.SendBatch(ctx, batch)
	for range points {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}

	return tx.Commit(ctx)
}

// ListAll returns every stored grid point ordered by altitude then
// inclination.
func (r *CapacityRepo) ListAll(ctx context.Context) ([]capacity.GridPoint, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT altitude_km, inclination_deg, max_payload_kg
		FROM capacity_grid
		ORDER BY altitude_km, inclination_deg
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []capacity.GridPoint
	for rows.Next() {
		var p capacity.GridPoint
		if err := rows.Scan(&p.AltitudeKm, &p.InclinationDeg, &p.MaxPayloadKg); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
