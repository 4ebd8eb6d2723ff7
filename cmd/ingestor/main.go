package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	minioadapter "github.com/orbitcap/orbitcap/internal/adapters/minio"
	natsadapter "github.com/orbitcap/orbitcap/internal/adapters/nats"
	"github.com/orbitcap/orbitcap/internal/adapters/postgres"
	"github.com/orbitcap/orbitcap/internal/core/domain"
	"github.com/orbitcap/orbitcap/internal/core/ports"
	"github.com/orbitcap/orbitcap/internal/pkg/capacity"
	"github.com/orbitcap/orbitcap/internal/pkg/config"
	"github.com/orbitcap/orbitcap/internal/pkg/logging"
	"github.com/orbitcap/orbitcap/internal/pkg/metrics"
)

func main() {
	// Local development convenience; a missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load("orbitcap-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("orbitcap-ingestor", os.Getenv("LOG_LEVEL"), "json")

	missionsPath := "data/mission_data.csv"
	gridPath := "data/capacity_grid.csv"
	if len(os.Args) > 1 {
		missionsPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		gridPath = os.Args[2]
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	missionRepo := postgres.NewMissionRepo(db)
	capacityRepo := postgres.NewCapacityRepo(db)

	// Events are best-effort: an offline broker must not block ingestion
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, skipping ingest events", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// When a landing zone is configured, paths are object keys in the bucket.
	// Otherwise they are local files.
	var store ports.ObjectStore
	if cfg.Landing.Endpoint != "" {
		store, err = minioadapter.New(
			cfg.Landing.Endpoint, cfg.Landing.AccessKey, cfg.Landing.SecretKey,
			cfg.Landing.Bucket, cfg.Landing.UseSSL,
		)
		if err != nil {
			log.Fatalf("landing zone: %v", err)
		}
		slog.Info("reading from landing zone", "endpoint", cfg.Landing.Endpoint, "bucket", cfg.Landing.Bucket)
	}

	runID := uuid.NewString()
	slog.Info("ingestion run starting", "run_id", runID)

	// Both datasets are attempted even when one fails; a scheduler still
	// needs a nonzero exit to notice the failed run.
	if err := ingestAll(ctx, missionRepo, capacityRepo, publisher, store, missionsPath, gridPath, runID); err != nil {
		log.Fatalf("ingestion run %s failed: %v", runID, err)
	}

	slog.Info("ingestion run complete", "run_id", runID)
}

func ingestAll(ctx context.Context, missionRepo ports.MissionRepository, capacityRepo ports.CapacityRepository, publisher ports.EventPublisher, store ports.ObjectStore, missionsPath, gridPath, runID string) error {
	var errs []error

	if err := ingestMissions(ctx, missionRepo, publisher, store, missionsPath, runID); err != nil {
		metrics.IngestErrors.WithLabelValues("missions").Inc()
		slog.Error("missions ingest failed", "error", err)
		errs = append(errs, fmt.Errorf("missions: %w", err))
	}
	if err := ingestCapacityGrid(ctx, capacityRepo, publisher, store, gridPath, runID); err != nil {
		metrics.IngestErrors.WithLabelValues("capacity_grid").Inc()
		slog.Error("capacity grid ingest failed", "error", err)
		errs = append(errs, fmt.Errorf("capacity_grid: %w", err))
	}

	return errors.Join(errs...)
}

func readSource(ctx context.Context, store ports.ObjectStore, path string) ([]byte, error) {
	if store != nil {
		return store.Fetch(ctx, path)
	}
	return os.ReadFile(path)
}

// ---------------------------------------------------------------------------
// Missions
// ---------------------------------------------------------------------------

func ingestMissions(ctx context.Context, repo ports.MissionRepository, publisher ports.EventPublisher, store ports.ObjectStore, path, runID string) error {
	start := time.Now()

	data, err := readSource(ctx, store, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	missions, skipped, err := parseMissions(data)
	if err != nil {
		return err
	}

	if err := repo.UpsertBatch(ctx, missions); err != nil {
		return fmt.Errorf("upsert missions: %w", err)
	}

	metrics.MissionsIngested.WithLabelValues("missions").Add(float64(len(missions)))
	metrics.IngestDuration.WithLabelValues("missions").Observe(time.Since(start).Seconds())
	slog.Info("missions ingested", "records", len(missions), "skipped", skipped, "source", path)

	publishEvent(ctx, publisher, &domain.IngestEvent{
		RunID:   runID,
		Dataset: "missions",
		Records: len(missions),
		Source:  path,
		Time:    time.Now().UTC(),
	})
	return nil
}

// parseMissions reads the mission archive CSV. Early flights have gaps in
// the numeric columns, and failed flights often lack payload figures; those
// fields stay nil rather than zero.
func parseMissions(data []byte) (missions []domain.Mission, skipped int, err error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)

	for _, required := range []string{"mission_no", "mission_name", "date", "mission_outcome"} {
		if _, ok := cols[required]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", required)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		number, err := strconv.Atoi(getField(record, cols, "mission_no"))
		if err != nil || number <= 0 {
			skipped++
			continue
		}

		date, err := parseDate(getField(record, cols, "date"))
		if err != nil {
			skipped++
			continue
		}

		m := domain.Mission{
			Number:         number,
			Name:           getField(record, cols, "mission_name"),
			Date:           date,
			VehicleTypeNo:  intField(record, cols, "type_no"),
			SatelliteCount: intField(record, cols, "satellite_quantity"),
			PayloadMassKg:  floatField(record, cols, "payload_mass_kg"),
			Customers:      splitCustomers(getField(record, cols, "customers")),
			Outcome:        getField(record, cols, "mission_outcome"),
			OrbitType:      getField(record, cols, "orbit_type"),
			LaunchSite:     getField(record, cols, "launch_site"),
			AltitudeKm:     floatField(record, cols, "orbit_altitude_km"),
			InclinationDeg: floatField(record, cols, "orbital_inclination_deg"),
		}
		missions = append(missions, m)
	}

	if len(missions) == 0 {
		return nil, skipped, fmt.Errorf("no usable mission rows in source")
	}
	return missions, skipped, nil
}

// ---------------------------------------------------------------------------
// Capacity grid
// ---------------------------------------------------------------------------

func ingestCapacityGrid(ctx context.Context, repo ports.CapacityRepository, publisher ports.EventPublisher, store ports.ObjectStore, path, runID string) error {
	start := time.Now()

	data, err := readSource(ctx, store, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	points, err := parseCapacityGrid(data)
	if err != nil {
		return err
	}

	// A drop that cannot form a valid interpolation table must never reach
	// the store; the API validates again at startup and would refuse to boot.
	if _, err := capacity.NewTable(points); err != nil {
		return fmt.Errorf("reject grid drop: %w", err)
	}

	if err := repo.ReplaceAll(ctx, points); err != nil {
		return fmt.Errorf("replace grid: %w", err)
	}

	metrics.MissionsIngested.WithLabelValues("capacity_grid").Add(float64(len(points)))
	metrics.IngestDuration.WithLabelValues("capacity_grid").Observe(time.Since(start).Seconds())
	slog.Info("capacity grid ingested", "points", len(points), "source", path)

	publishEvent(ctx, publisher, &domain.IngestEvent{
		RunID:   runID,
		Dataset: "capacity_grid",
		Records: len(points),
		Source:  path,
		Time:    time.Now().UTC(),
	})
	return nil
}

func parseCapacityGrid(data []byte) ([]capacity.GridPoint, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)

	for _, required := range []string{"altitude_km", "inclination_deg", "max_payload_kg"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var points []capacity.GridPoint
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(points)+2, err)
		}

		alt, err := strconv.ParseFloat(getField(record, cols, "altitude_km"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: altitude_km: %w", len(points)+2, err)
		}
		inc, err := strconv.ParseFloat(getField(record, cols, "inclination_deg"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: inclination_deg: %w", len(points)+2, err)
		}
		kg, err := strconv.ParseFloat(getField(record, cols, "max_payload_kg"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: max_payload_kg: %w", len(points)+2, err)
		}

		points = append(points, capacity.GridPoint{
			AltitudeKm:     alt,
			InclinationDeg: inc,
			MaxPayloadKg:   kg,
		})
	}
	return points, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func publishEvent(ctx context.Context, publisher ports.EventPublisher, event *domain.IngestEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishIngest(ctx, event); err != nil {
		slog.Warn("publish ingest event", "dataset", event.Dataset, "error", err)
	}
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func intField(record []string, cols map[string]int, name string) *int {
	s := getField(record, cols, name)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func floatField(record []string, cols map[string]int, name string) *float64 {
	s := getField(record, cols, name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// splitCustomers breaks the comma-separated customers column into a clean
// slice. Some rows quote the whole list, some leave it empty.
func splitCustomers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"2 January 2006",
	"02/01/2006",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
