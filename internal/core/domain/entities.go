package domain

import (
	"time"
)

// Mission is one flown launch mission from the reference dataset. Numeric
// fields are pointers because the source records have gaps (early missions
// without published orbit parameters, failures without payload figures).
type Mission struct {
	ID             string    `json:"id"`
	Number         int       `json:"mission_number"`
	Name           string    `json:"mission_name"`
	Date           time.Time `json:"date"`
	VehicleTypeNo  *int      `json:"vehicle_type_no,omitempty"`
	SatelliteCount *int      `json:"satellite_count,omitempty"`
	PayloadMassKg  *float64  `json:"payload_mass_kg,omitempty"`
	Customers      []string  `json:"customers,omitempty"`
	Outcome        string    `json:"outcome"`
	OrbitType      string    `json:"orbit_type,omitempty"`
	LaunchSite     string    `json:"launch_site,omitempty"`
	AltitudeKm     *float64  `json:"altitude_km,omitempty"`
	InclinationDeg *float64  `json:"inclination_deg,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Succeeded reports whether the mission outcome counts as a success.
func (m *Mission) Succeeded() bool {
	return m.Outcome == "Success"
}

// Utilization compares a mission's actual payload mass against the
// interpolated maximum capacity for its orbit parameters. The estimate
// fields are nil when the mission record lacks altitude or inclination.
type Utilization struct {
	MissionNumber         int      `json:"mission_number"`
	MissionName           string   `json:"mission_name"`
	ActualPayloadKg       *float64 `json:"actual_payload_kg,omitempty"`
	EstimatedMaxPayloadKg *float64 `json:"estimated_max_payload_kg,omitempty"`
	UtilizationPct        *float64 `json:"utilization_pct,omitempty"`
	AltitudeInBounds      *bool    `json:"altitude_in_bounds,omitempty"`
	InclinationInBounds   *bool    `json:"inclination_in_bounds,omitempty"`
	Note                  string   `json:"note,omitempty"`
}

// IngestEvent is published after an ingestion run writes a batch of records.
type IngestEvent struct {
	RunID   string    `json:"run_id"`
	Dataset string    `json:"dataset"` // "missions" | "capacity_grid"
	Records int       `json:"records"`
	Source  string    `json:"source"`
	Time    time.Time `json:"time"`
}
