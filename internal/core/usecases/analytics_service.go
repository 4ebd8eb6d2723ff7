package usecases

import (
	"context"
	"encoding/json"

	"github.com/orbitcap/orbitcap/internal/core/domain"
	"github.com/orbitcap/orbitcap/internal/core/ports"
)

// AnalyticsService runs the read-only aggregation reports over the mission
// dataset. Aggregates are cached; they only change on ingestion.
type AnalyticsService struct {
	missions ports.MissionRepository
	caps     *CapacityService
	cache    ports.CacheService
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(missions ports.MissionRepository, caps *CapacityService, cache ports.CacheService) *AnalyticsService {
	return &AnalyticsService{missions: missions, caps: caps, cache: cache}
}

const (
	analyticsCacheTTL = 300 // seconds

	// Widest customer-share report ever served; the cache holds this full
	// ranking under a single key and requests clip it to their limit, so
	// invalidation never has to chase per-limit keys.
	maxCustomerShareRows = 100
)

// CustomerShare returns launches per customer, most active first.
func (s *AnalyticsService) CustomerShare(ctx context.Context, limit int) ([]domain.CustomerShare, error) {
	if limit <= 0 || limit > maxCustomerShareRows {
		limit = 10
	}

	cacheKey := "analytics:customers"
	if cached, ok := cacheGet[[]domain.CustomerShare](ctx, s.cache, cacheKey); ok {
		return clipCustomerShare(cached, limit), nil
	}

	rows, err := s.missions.CustomerShare(ctx, maxCustomerShareRows)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, cacheKey, rows)
	return clipCustomerShare(rows, limit), nil
}

func clipCustomerShare(rows []domain.CustomerShare, limit int) []domain.CustomerShare {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

// SuccessRateByYear returns per-year launch counts and success rates.
func (s *AnalyticsService) SuccessRateByYear(ctx context.Context) ([]domain.YearlySuccessRate, error) {
	cacheKey := "analytics:success-rate"
	if cached, ok := cacheGet[[]domain.YearlySuccessRate](ctx, s.cache, cacheKey); ok {
		return cached, nil
	}

	rows, err := s.missions.SuccessRateByYear(ctx)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, cacheKey, rows)
	return rows, nil
}

// PayloadStatsByOrbitType returns payload mass statistics per orbit type.
func (s *AnalyticsService) PayloadStatsByOrbitType(ctx context.Context) ([]domain.OrbitPayloadStats, error) {
	cacheKey := "analytics:orbits"
	if cached, ok := cacheGet[[]domain.OrbitPayloadStats](ctx, s.cache, cacheKey); ok {
		return cached, nil
	}

	rows, err := s.missions.PayloadStatsByOrbitType(ctx)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, cacheKey, rows)
	return rows, nil
}

// SiteUsage returns launches per launch site.
func (s *AnalyticsService) SiteUsage(ctx context.Context) ([]domain.SiteUsage, error) {
	cacheKey := "analytics:sites"
	if cached, ok := cacheGet[[]domain.SiteUsage](ctx, s.cache, cacheKey); ok {
		return cached, nil
	}

	rows, err := s.missions.SiteUsage(ctx)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, cacheKey, rows)
	return rows, nil
}

// UtilizationReport computes actual-vs-estimated payload for every mission.
// Per-mission interpolation results are derived fresh on every call; only
// the assembled report is cached.
func (s *AnalyticsService) UtilizationReport(ctx context.Context) ([]domain.Utilization, error) {
	cacheKey := "analytics:utilization"
	if cached, ok := cacheGet[[]domain.Utilization](ctx, s.cache, cacheKey); ok {
		return cached, nil
	}

	missions, err := s.missions.List(ctx)
	if err != nil {
		return nil, err
	}

	report := make([]domain.Utilization, 0, len(missions))
	for i := range missions {
		u, err := utilizationFor(&missions[i], s.caps)
		if err != nil {
			// Malformed orbit parameters on a single record must not sink
			// the whole report.
			u = domain.Utilization{
				MissionNumber: missions[i].Number,
				MissionName:   missions[i].Name,
				Note:          err.Error(),
			}
		}
		report = append(report, u)
	}

	cacheSet(ctx, s.cache, cacheKey, report)
	return report, nil
}

// InvalidateReports drops cached aggregates after an ingestion run.
func (s *AnalyticsService) InvalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, key := range []string{
		"analytics:customers", "analytics:success-rate", "analytics:orbits",
		"analytics:sites", "analytics:utilization",
	} {
		_ = s.cache.Delete(ctx, key)
	}
}

func cacheGet[T any](ctx context.Context, cache ports.CacheService, key string) (T, bool) {
	var out T
	if cache == nil {
		return out, false
	}
	data, err := cache.Get(ctx, key)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false
	}
	return out, true
}

func cacheSet[T any](ctx context.Context, cache ports.CacheService, key string, value T) {
	if cache == nil {
		return
	}
	if data, err := json.Marshal(value); err == nil {
		_ = cache.Set(ctx, key, data, analyticsCacheTTL)
	}
}
