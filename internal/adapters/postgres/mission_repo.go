package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/orbitcap/orbitcap/internal/core/domain"
)

// MissionRepo implements ports.MissionRepository with pgx.
type MissionRepo struct {
	db *DB
}

// NewMissionRepo creates a new MissionRepo.
func NewMissionRepo(db *DB) *MissionRepo {
	return &MissionRepo{db: db}
}

const missionColumns = `
	id, mission_number, mission_name, launch_date,
	vehicle_type_no, satellite_count, payload_mass_kg,
	COALESCE(customers, '{}'), COALESCE(outcome, ''), COALESCE(orbit_type, ''),
	COALESCE(launch_site, ''), altitude_km, inclination_deg, created_at`

func scanMission(row pgx.Row) (*domain.Mission, error) {
	var m domain.Mission
	err := row.Scan(
		&m.ID, &m.Number, &m.Name, &m.Date,
		&m.VehicleTypeNo, &m.SatelliteCount, &m.PayloadMassKg,
		&m.Customers, &m.Outcome, &m.OrbitType,
		&m.LaunchSite, &m.AltitudeKm, &m.InclinationDeg, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// upsertMissionSQL is shared by the single and batch paths so a re-ingested
// dataset refreshes every mutable column on both.
const upsertMissionSQL = `
	INSERT INTO missions (mission_number, mission_name, launch_date,
		vehicle_type_no, satellite_count, payload_mass_kg, customers,
		outcome, orbit_type, launch_site, altitude_km, inclination_deg)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (mission_number) DO UPDATE
	SET mission_name = EXCLUDED.mission_name,
	    launch_date = EXCLUDED.launch_date,
	    vehicle_type_no = EXCLUDED.vehicle_type_no,
	    satellite_count = EXCLUDED.satellite_count,
	    payload_mass_kg = EXCLUDED.payload_mass_kg,
	    customers = EXCLUDED.customers,
	    outcome = EXCLUDED.outcome,
	    orbit_type = EXCLUDED.orbit_type,
	    launch_site = EXCLUDED.launch_site,
	    altitude_km = EXCLUDED.altitude_km,
	    inclination_deg = EXCLUDED.inclination_deg`

func upsertMissionArgs(m *domain.Mission) []any {
	return []any{
		m.Number, m.Name, m.Date, m.VehicleTypeNo, m.SatelliteCount,
		m.PayloadMassKg, m.Customers, m.Outcome, m.OrbitType, m.LaunchSite,
		m.AltitudeKm, m.InclinationDeg,
	}
}

// Upsert inserts or updates a single mission keyed by mission number.
func (r *MissionRepo) Upsert(ctx context.Context, m *domain.Mission) error {
	_, err := r.db.Pool.Exec(ctx, upsertMissionSQL, upsertMissionArgs(m)...)
	return err
}

// UpsertBatch inserts many missions using pgx.Batch.
func (r *MissionRepo) UpsertBatch(ctx context.Context, missions []domain.Mission) error {
	batch := &pgx.Batch{}
	for i := range missions {
		batch.Queue(upsertMissionSQL, upsertMissionArgs(&missions[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range missions {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByNumber returns a mission by its mission number.
func (r *MissionRepo) GetByNumber(ctx context.Context, number int) (*domain.Mission, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+missionColumns+` FROM missions WHERE mission_number = $1`, number)
	return scanMission(row)
}

// List returns all missions ordered by mission number.
func (r *MissionRepo) List(ctx context.Context) ([]domain.Mission, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+missionColumns+` FROM missions ORDER BY mission_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		missions = append(missions, *m)
	}
	return missions, rows.Err()
}

// Count returns the number of stored missions.
func (r *MissionRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM missions`).Scan(&n)
	return n, err
}

// CustomerShare returns launches per customer. A mission with several
// customers counts once per customer; the share is against all missions.
func (r *MissionRepo) CustomerShare(ctx context.Context, limit int) ([]domain.CustomerShare, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT trim(customer) AS customer,
		       count(*) AS launches,
		       round(count(*) * 100.0 / (SELECT count(*) FROM missions), 2) AS share_pct
		FROM missions, unnest(customers) AS customer
		GROUP BY trim(customer)
		ORDER BY launches DESC, customer
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CustomerShare
	for rows.Next() {
		var c domain.CustomerShare
		if err := rows.Scan(&c.Customer, &c.Launches, &c.SharePct); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SuccessRateByYear aggregates outcomes per launch year, newest first.
func (r *MissionRepo) SuccessRateByYear(ctx context.Context) ([]domain.YearlySuccessRate, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT extract(year FROM launch_date)::int AS year,
		       count(*) AS total_launches,
		       count(*) FILTER (WHERE outcome = 'Success') AS successes,
		       round(count(*) FILTER (WHERE outcome = 'Success') * 100.0 / count(*), 2) AS success_rate
		FROM missions
		GROUP BY year
		ORDER BY year DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.YearlySuccessRate
	for rows.Next() {
		var y domain.YearlySuccessRate
		if err := rows.Scan(&y.Year, &y.TotalLaunches, &y.Successes, &y.SuccessRatePct); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

// PayloadStatsByOrbitType summarises payload mass per orbit type.
func (r *MissionRepo) PayloadStatsByOrbitType(ctx context.Context) ([]domain.OrbitPayloadStats, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT orbit_type,
		       count(*) AS launches,
		       round(avg(payload_mass_kg)::numeric, 2) AS avg_payload_kg,
		       round(min(payload_mass_kg)::numeric, 2) AS min_payload_kg,
		       round(max(payload_mass_kg)::numeric, 2) AS max_payload_kg
		FROM missions
		WHERE orbit_type IS NOT NULL AND orbit_type <> ''
		  AND payload_mass_kg IS NOT NULL
		GROUP BY orbit_type
		ORDER BY launches DESC, orbit_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrbitPayloadStats
	for rows.Next() {
		var s domain.OrbitPayloadStats
		if err := rows.Scan(&s.OrbitType, &s.Launches, &s.AvgPayloadKg, &s.MinPayloadKg, &s.MaxPayloadKg); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SiteUsage returns launches per launch site.
func (r *MissionRepo) SiteUsage(ctx context.Context) ([]domain.SiteUsage, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT launch_site,
		       count(*) AS launches,
		       round(count(*) * 100.0 / (SELECT count(*) FROM missions), 2) AS share_pct
		FROM missions
		WHERE launch_site IS NOT NULL AND launch_site <> ''
		GROUP BY launch_site
		ORDER BY launches DESC, launch_site
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SiteUsage
	for rows.Next() {
		var s domain.SiteUsage
		if err := rows.Scan(&s.Site, &s.Launches, &s.SharePct); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
