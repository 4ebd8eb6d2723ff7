package ports

import (
	"context"

	"github.com/orbitcap/orbitcap/internal/core/domain"
	"github.com/orbitcap/orbitcap/internal/pkg/capacity"
)

// MissionRepository persists mission records and runs the read-only
// aggregations the analytics reports are built from.
type MissionRepository interface {
	Upsert(ctx context.Context, mission *domain.Mission) error
	UpsertBatch(ctx context.Context, missions []domain.Mission) error
	GetByNumber(ctx context.Context, number int) (*domain.Mission, error)
	List(ctx context.Context) ([]domain.Mission, error)
	Count(ctx context.Context) (int, error)

	CustomerShare(ctx context.Context, limit int) ([]domain.CustomerShare, error)
	SuccessRateByYear(ctx context.Context) ([]domain.YearlySuccessRate, error)
	PayloadStatsByOrbitType(ctx context.Context) ([]domain.OrbitPayloadStats, error)
	SiteUsage(ctx context.Context) ([]domain.SiteUsage, error)
}

// CapacityRepository persists the capacity reference grid. The grid is
// replaced atomically per ingestion run; readers load it once at startup.
type CapacityRepository interface {
	ReplaceAll(ctx context.Context, points []capacity.GridPoint) error
	ListAll(ctx context.Context) ([]capacity.GridPoint, error)
}
