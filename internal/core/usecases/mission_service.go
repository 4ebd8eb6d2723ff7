package usecases

import (
	"context"
	"fmt"

	"github.com/orbitcap/orbitcap/internal/core/domain"
	"github.com/orbitcap/orbitcap/internal/core/ports"
	"github.com/orbitcap/orbitcap/internal/pkg/capacity"
)

// MissionService handles mission-record queries and per-mission capacity
// utilization.
type MissionService struct {
	missions ports.MissionRepository
	caps     *CapacityService
}

// NewMissionService creates a new MissionService.
func NewMissionService(missions ports.MissionRepository, caps *CapacityService) *MissionService {
	return &MissionService{missions: missions, caps: caps}
}

// List returns all missions ordered by mission number.
func (s *MissionService) List(ctx context.Context) ([]domain.Mission, error) {
	return s.missions.List(ctx)
}

// GetByNumber returns a single mission.
func (s *MissionService) GetByNumber(ctx context.Context, number int) (*domain.Mission, error) {
	return s.missions.GetByNumber(ctx, number)
}

// Utilization computes actual-vs-estimated payload for one mission.
func (s *MissionService) Utilization(ctx context.Context, number int) (*domain.Utilization, error) {
	mission, err := s.missions.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	u, err := utilizationFor(mission, s.caps)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// utilizationFor derives the utilization row for a mission. Records without
// orbit parameters get a note instead of an estimate; records whose
// parameters fall outside the reference table still get a flagged
// best-effort estimate.
func utilizationFor(m *domain.Mission, caps *CapacityService) (domain.Utilization, error) {
	u := domain.Utilization{
		MissionNumber:   m.Number,
		MissionName:     m.Name,
		ActualPayloadKg: m.PayloadMassKg,
	}

	if m.AltitudeKm == nil || m.InclinationDeg == nil {
		u.Note = "missing altitude or inclination"
		return u, nil
	}

	res, err := caps.Estimate(capacity.Query{
		AltitudeKm:     *m.AltitudeKm,
		InclinationDeg: *m.InclinationDeg,
	})
	if err != nil {
		return domain.Utilization{}, fmt.Errorf("mission %d: %w", m.Number, err)
	}

	est := res.EstimatedMaxPayloadKg
	u.EstimatedMaxPayloadKg = &est
	u.AltitudeInBounds = &res.AltitudeInBounds
	u.InclinationInBounds = &res.InclinationInBounds

	if m.PayloadMassKg != nil && est > 0 {
		pct := *m.PayloadMassKg / est * 100
		u.UtilizationPct = &pct
	}
	return u, nil
}
