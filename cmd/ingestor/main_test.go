package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/orbitcap/orbitcap/internal/core/domain"
	"github.com/orbitcap/orbitcap/internal/pkg/capacity"
)

const missionCSV = `mission_no,mission_name,date,type_no,satellite_quantity,payload_mass_kg,customers,mission_outcome,orbit_type,launch_site,orbit_altitude_km,orbital_inclination_deg
1,It's a Test,2017-05-25,1,,,"",Failure,LEO,Mahia LC-1A,300,83
2,Still Testing,2018-01-21,1,4,13.0,"Planet Labs, Spire Global",Success,LEO,Mahia LC-1A,500,82.9
3,It's Business Time,2018-11-11,1,7,40.0,"Spire Global, Tyvak",Success,LEO,Mahia LC-1A,500,85
,,,,,,,,,,,
bad,row,here,,,,,,,,,
`

const gridCSV = `altitude_km,inclination_deg,max_payload_kg
500,45,300
500,90,250
1000,45,200
1000,90,150
`

// --- Stub repositories ---

type stubMissionRepo struct {
	batches int
}

func (s *stubMissionRepo) Upsert(ctx context.Context, m *domain.Mission) error { return nil }
func (s *stubMissionRepo) UpsertBatch(ctx context.Context, missions []domain.Mission) error {
	s.batches++
	return nil
}
func (s *stubMissionRepo) GetByNumber(ctx context.Context, number int) (*domain.Mission, error) {
	return nil, nil
}
func (s *stubMissionRepo) List(ctx context.Context) ([]domain.Mission, error) { return nil, nil }
func (s *stubMissionRepo) Count(ctx context.Context) (int, error)             { return 0, nil }
func (s *stubMissionRepo) CustomerShare(ctx context.Context, limit int) ([]domain.CustomerShare, error) {
	return nil, nil
}
func (s *stubMissionRepo) SuccessRateByYear(ctx context.Context) ([]domain.YearlySuccessRate, error) {
	return nil, nil
}
func (s *stubMissionRepo) PayloadStatsByOrbitType(ctx context.Context) ([]domain.OrbitPayloadStats, error) {
	return nil, nil
}
func (s *stubMissionRepo) SiteUsage(ctx context.Context) ([]domain.SiteUsage, error) {
	return nil, nil
}

type stubCapacityRepo struct {
	replaced int
}

func (s *stubCapacityRepo) ReplaceAll(ctx context.Context, points []capacity.GridPoint) error {
	s.replaced++
	return nil
}
func (s *stubCapacityRepo) ListAll(ctx context.Context) ([]capacity.GridPoint, error) {
	return nil, nil
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// --- Tests ---

func TestIngestAll_Success(t *testing.T) {
	missions := &stubMissionRepo{}
	grid := &stubCapacityRepo{}

	err := ingestAll(context.Background(), missions, grid, nil, nil,
		writeFixture(t, "missions.csv", missionCSV),
		writeFixture(t, "grid.csv", gridCSV),
		"run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missions.batches != 1 {
		t.Errorf("expected 1 mission batch, got %d", missions.batches)
	}
	if grid.replaced != 1 {
		t.Errorf("expected 1 grid replacement, got %d", grid.replaced)
	}
}

func TestIngestAll_FailedDatasetSurfaces(t *testing.T) {
	missions := &stubMissionRepo{}
	grid := &stubCapacityRepo{}

	// Missions ingest fine; the grid source is missing. The run must keep
	// going, then report the failure instead of swallowing it.
	err := ingestAll(context.Background(), missions, grid, nil, nil,
		writeFixture(t, "missions.csv", missionCSV),
		filepath.Join(t.TempDir(), "absent.csv"),
		"run-2")
	if err == nil {
		t.Fatal("expected an error for the missing grid source")
	}
	if !strings.Contains(err.Error(), "capacity_grid") {
		t.Errorf("error should name the failed dataset, got %v", err)
	}
	if missions.batches != 1 {
		t.Errorf("missions should still ingest when the grid fails, got %d batches", missions.batches)
	}
	if grid.replaced != 0 {
		t.Errorf("grid must not be replaced on a failed read, got %d replacements", grid.replaced)
	}
}

func TestIngestAll_InvalidGridNeverReachesStore(t *testing.T) {
	grid := &stubCapacityRepo{}

	// A single altitude row cannot form an interpolation table.
	degenerate := "altitude_km,inclination_deg,max_payload_kg\n500,45,300\n500,90,250\n"
	err := ingestAll(context.Background(), &stubMissionRepo{}, grid, nil, nil,
		writeFixture(t, "missions.csv", missionCSV),
		writeFixture(t, "grid.csv", degenerate),
		"run-3")
	if err == nil {
		t.Fatal("expected an error for a degenerate grid drop")
	}
	if grid.replaced != 0 {
		t.Errorf("degenerate grid must be rejected before the store, got %d replacements", grid.replaced)
	}
}

func TestParseMissions(t *testing.T) {
	missions, skipped, err := parseMissions([]byte(missionCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(missions) != 3 {
		t.Fatalf("expected 3 missions, got %d", len(missions))
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped rows, got %d", skipped)
	}

	first := missions[0]
	if first.Number != 1 || first.Name != "It's a Test" {
		t.Errorf("unexpected first mission: %+v", first)
	}
	if first.PayloadMassKg != nil {
		t.Error("expected nil payload for failed test flight")
	}
	if first.SatelliteCount != nil {
		t.Error("expected nil satellite count")
	}
	if first.AltitudeKm == nil || *first.AltitudeKm != 300 {
		t.Errorf("expected altitude 300, got %v", first.AltitudeKm)
	}

	second := missions[1]
	if len(second.Customers) != 2 || second.Customers[0] != "Planet Labs" || second.Customers[1] != "Spire Global" {
		t.Errorf("unexpected customers: %v", second.Customers)
	}
	if second.PayloadMassKg == nil || *second.PayloadMassKg != 13.0 {
		t.Errorf("expected payload 13.0, got %v", second.PayloadMassKg)
	}
	if second.Date != time.Date(2018, 1, 21, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected date: %v", second.Date)
	}
}

func TestParseMissions_MissingColumn(t *testing.T) {
	csv := "mission_no,mission_name\n1,Test\n"
	if _, _, err := parseMissions([]byte(csv)); err == nil {
		t.Fatal("expected error for missing required columns")
	}
}

func TestParseMissions_Empty(t *testing.T) {
	csv := "mission_no,mission_name,date,mission_outcome\n"
	if _, _, err := parseMissions([]byte(csv)); err == nil {
		t.Fatal("expected error for source with no usable rows")
	}
}

func TestParseCapacityGrid(t *testing.T) {
	csv := `altitude_km,inclination_deg,max_payload_kg
500,45,300
500,90,250
1000,45,200
1000,90,150
`
	points, err := parseCapacityGrid([]byte(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	if points[0].AltitudeKm != 500 || points[0].MaxPayloadKg != 300 {
		t.Errorf("unexpected first point: %+v", points[0])
	}
}

func TestParseCapacityGrid_BadValue(t *testing.T) {
	csv := "altitude_km,inclination_deg,max_payload_kg\n500,forty-five,300\n"
	if _, err := parseCapacityGrid([]byte(csv)); err == nil {
		t.Fatal("expected error for non-numeric inclination")
	}
}

func TestSplitCustomers(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"NASA", 1},
		{"Planet Labs, Spire Global", 2},
		{" , ,", 0},
		{"BlackSky,,Spaceflight", 2},
	}
	for _, tc := range cases {
		got := splitCustomers(tc.in)
		if len(got) != tc.want {
			t.Errorf("splitCustomers(%q) = %v, want %d entries", tc.in, got, tc.want)
		}
	}
}

func TestParseDate_Layouts(t *testing.T) {
	for _, s := range []string{"2020-06-13", "June 13, 2020", "13 June 2020"} {
		d, err := parseDate(s)
		if err != nil {
			t.Errorf("parseDate(%q): %v", s, err)
			continue
		}
		if d.Year() != 2020 || d.Month() != time.June || d.Day() != 13 {
			t.Errorf("parseDate(%q) = %v", s, d)
		}
	}
	if _, err := parseDate("sometime in 2020"); err == nil {
		t.Error("expected error for unrecognised date")
	}
}
