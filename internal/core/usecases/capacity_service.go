package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/orbitcap/orbitcap/internal/core/ports"
	"github.com/orbitcap/orbitcap/internal/pkg/capacity"
)

// CapacityService owns the capacity reference table and serves payload
// estimates. The table is built once at startup and shared read-only; every
// Estimate call is a pure function of the query and the table.
type CapacityService struct {
	table *capacity.Table
}

// NewCapacityService loads the capacity grid from the store and builds the
// table. An empty store falls back to the embedded Electron reference grid,
// so the service works before the first ingestion run. A malformed stored
// grid is a configuration error and fails startup.
func NewCapacityService(ctx context.Context, grid ports.CapacityRepository) (*CapacityService, error) {
	if grid != nil {
		points, err := grid.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load capacity grid: %w", err)
		}
		if len(points) > 0 {
			table, err := capacity.NewTable(points)
			if err != nil {
				return nil, fmt.Errorf("stored capacity grid: %w", err)
			}
			slog.Info("capacity grid loaded from store", "points", table.Size())
			return &CapacityService{table: table}, nil
		}
	}

	slog.Info("capacity store empty, using embedded electron grid")
	return &CapacityService{table: capacity.ElectronTable()}, nil
}

// NewCapacityServiceFromTable wraps an already-built table. Used by tests
// and by consumers that construct the grid themselves.
func NewCapacityServiceFromTable(table *capacity.Table) *CapacityService {
	return &CapacityService{table: table}
}

// Estimate returns the interpolated maximum payload capacity for the query.
func (s *CapacityService) Estimate(q capacity.Query) (capacity.Result, error) {
	return s.table.Estimate(q)
}

// Grid returns the full reference grid, ordered by altitude then inclination.
func (s *CapacityService) Grid() []capacity.GridPoint {
	return s.table.Points()
}

// Span returns the altitude range the table covers.
func (s *CapacityService) Span() (minKm, maxKm float64) {
	return s.table.Span()
}
