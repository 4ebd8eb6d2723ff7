package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	handler "github.com/orbitcap/orbitcap/internal/adapters/http"
	"github.com/orbitcap/orbitcap/internal/core/domain"
	"github.com/orbitcap/orbitcap/internal/core/usecases"
	"github.com/orbitcap/orbitcap/internal/pkg/capacity"
)

// ---- Mock repositories ----

type mockMissionRepo struct {
	listFn        func(ctx context.Context) ([]domain.Mission, error)
	getByNumberFn func(ctx context.Context, number int) (*domain.Mission, error)
	customersFn   func(ctx context.Context, limit int) ([]domain.CustomerShare, error)
	successFn     func(ctx context.Context) ([]domain.YearlySuccessRate, error)
	orbitsFn      func(ctx context.Context) ([]domain.OrbitPayloadStats, error)
	sitesFn       func(ctx context.Context) ([]domain.SiteUsage, error)
}

func (m *mockMissionRepo) Upsert(ctx context.Context, mission *domain.Mission) error { return nil }
func (m *mockMissionRepo) UpsertBatch(ctx context.Context, missions []domain.Mission) error {
	return nil
}
func (m *mockMissionRepo) GetByNumber(ctx context.Context, number int) (*domain.Mission, error) {
	if m.getByNumberFn != nil {
		return m.getByNumberFn(ctx, number)
	}
	return nil, pgx.ErrNoRows
}
func (m *mockMissionRepo) List(ctx context.Context) ([]domain.Mission, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockMissionRepo) Count(ctx context.Context) (int, error) { return 0, nil }
func (m *mockMissionRepo) CustomerShare(ctx context.Context, limit int) ([]domain.CustomerShare, error) {
	if m.customersFn != nil {
		return m.customersFn(ctx, limit)
	}
	return nil, nil
}
func (m *mockMissionRepo) SuccessRateByYear(ctx context.Context) ([]domain.YearlySuccessRate, error) {
	if m.successFn != nil {
		return m.successFn(ctx)
	}
	return nil, nil
}
func (m *mockMissionRepo) PayloadStatsByOrbitType(ctx context.Context) ([]domain.OrbitPayloadStats, error) {
	if m.orbitsFn != nil {
		return m.orbitsFn(ctx)
	}
	return nil, nil
}
func (m *mockMissionRepo) SiteUsage(ctx context.Context) ([]domain.SiteUsage, error) {
	if m.sitesFn != nil {
		return m.sitesFn(ctx)
	}
	return nil, nil
}

// ---- Test helpers ----

// testTable is a minimal two-altitude grid with easy-to-verify numbers:
// (750, 67.5) interpolates to exactly 225.
func testTable(t *testing.T) *capacity.Table {
	t.Helper()
	table, err := capacity.NewTable([]capacity.GridPoint{
		{AltitudeKm: 500, InclinationDeg: 45, MaxPayloadKg: 300},
		{AltitudeKm: 500, InclinationDeg: 90, MaxPayloadKg: 250},
		{AltitudeKm: 1000, InclinationDeg: 45, MaxPayloadKg: 200},
		{AltitudeKm: 1000, InclinationDeg: 90, MaxPayloadKg: 150},
	})
	if err != nil {
		t.Fatalf("build test table: %v", err)
	}
	return table
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(t *testing.T, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	caps := usecases.NewCapacityServiceFromTable(testTable(t))
	d := &handler.Dependencies{
		Capacity:  caps,
		Missions:  usecases.NewMissionService(&mockMissionRepo{}, caps),
		Analytics: usecases.NewAnalyticsService(&mockMissionRepo{}, caps, nil),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func ptrFloat(v float64) *float64 { return &v }

func jsonReader(s string) io.Reader { return strings.NewReader(s) }

// ---- Capacity handler tests ----

func TestEstimateCapacity_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/capacity/estimate?altitude_km=750&inclination_deg=67.5", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result capacity.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.EstimatedMaxPayloadKg != 225 {
		t.Errorf("expected 225 kg, got %v", result.EstimatedMaxPayloadKg)
	}
	if !result.AltitudeInBounds || !result.InclinationInBounds {
		t.Errorf("expected both in-bounds flags true, got %+v", result)
	}
	if len(result.Brackets) != 4 {
		t.Errorf("expected 4 bracketing points, got %d", len(result.Brackets))
	}
}

func TestEstimateCapacity_MissingParams(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/capacity/estimate?altitude_km=750", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Status int    `json:"status"`
		Code   string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

func TestEstimateCapacity_InvalidValue(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/capacity/estimate?altitude_km=-100&inclination_deg=45", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for negative altitude, got %d", resp.StatusCode)
	}
}

func TestEstimateCapacity_OutOfBoundsStillServed(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/capacity/estimate?altitude_km=5000&inclination_deg=45", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 for out-of-range query, got %d", resp.StatusCode)
	}

	var result capacity.Result
	json.NewDecoder(resp.Body).Decode(&result)
	if result.AltitudeInBounds {
		t.Error("expected altitude_in_bounds false")
	}
	if result.EstimatedMaxPayloadKg != 200 {
		t.Errorf("expected clamped estimate 200, got %v", result.EstimatedMaxPayloadKg)
	}
}

func TestCapacityGrid(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/capacity/grid", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		AltitudeSpanKm []float64            `json:"altitude_span_km"`
		Points         []capacity.GridPoint `json:"points"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Points) != 4 {
		t.Errorf("expected 4 grid points, got %d", len(result.Points))
	}
	if len(result.AltitudeSpanKm) != 2 || result.AltitudeSpanKm[0] != 500 || result.AltitudeSpanKm[1] != 1000 {
		t.Errorf("expected span [500 1000], got %v", result.AltitudeSpanKm)
	}
	if cc := resp.Header.Get("Cache-Control"); cc == "" {
		t.Error("expected Cache-Control header on grid response")
	}
}

// ---- Mission handler tests ----

func sampleMissions() []domain.Mission {
	date := time.Date(2023, 3, 16, 0, 0, 0, 0, time.UTC)
	return []domain.Mission{
		{
			ID: "m1", Number: 34, Name: "The Beat Goes On", Date: date,
			PayloadMassKg: ptrFloat(112.5), Outcome: "Success",
			OrbitType: "LEO", LaunchSite: "Mahia LC-1B",
			AltitudeKm: ptrFloat(750), InclinationDeg: ptrFloat(67.5),
			Customers: []string{"Capella Space"},
		},
		{
			ID: "m2", Number: 35, Name: "Rocket Like A Hurricane", Date: date.AddDate(0, 1, 0),
			Outcome: "Success", OrbitType: "SSO", LaunchSite: "Mahia LC-1A",
		},
	}
}

func TestListMissions_Success(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		caps := d.Capacity
		d.Missions = usecases.NewMissionService(&mockMissionRepo{
			listFn: func(ctx context.Context) ([]domain.Mission, error) {
				return sampleMissions(), nil
			},
		}, caps)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/missions", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Mission `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 missions, got %d", len(result.Data))
	}
	if result.Data[0].Number != 34 {
		t.Errorf("expected mission 34 first, got %d", result.Data[0].Number)
	}
}

func TestListMissions_Pagination(t *testing.T) {
	missions := make([]domain.Mission, 5)
	for i := range missions {
		missions[i] = domain.Mission{Number: i + 1, Name: "Mission", Outcome: "Success"}
	}

	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Missions = usecases.NewMissionService(&mockMissionRepo{
			listFn: func(ctx context.Context) ([]domain.Mission, error) { return missions, nil },
		}, d.Capacity)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/missions?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Mission `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 missions in page, got %d", len(result.Data))
	}
	if result.Data[0].Number != 3 {
		t.Errorf("expected mission 3 first in page, got %d", result.Data[0].Number)
	}
	if link := resp.Header.Get("Link"); link == "" {
		t.Error("expected Link header on paginated response")
	}
}

func TestGetMission_Success(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Missions = usecases.NewMissionService(&mockMissionRepo{
			getByNumberFn: func(ctx context.Context, number int) (*domain.Mission, error) {
				m := sampleMissions()[0]
				return &m, nil
			},
		}, d.Capacity)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/missions/34", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var m domain.Mission
	json.NewDecoder(resp.Body).Decode(&m)
	if m.Number != 34 || m.Name != "The Beat Goes On" {
		t.Errorf("unexpected mission: %+v", m)
	}
}

func TestGetMission_NotFound(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/missions/999", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found error, got %s", apiErr.Code)
	}
}

func TestGetMission_BadNumber(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/missions/abc", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestMissionUtilization_Success(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Missions = usecases.NewMissionService(&mockMissionRepo{
			getByNumberFn: func(ctx context.Context, number int) (*domain.Mission, error) {
				m := sampleMissions()[0]
				return &m, nil
			},
		}, d.Capacity)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/missions/34/utilization", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var u domain.Utilization
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		t.Fatal(err)
	}
	if u.EstimatedMaxPayloadKg == nil || *u.EstimatedMaxPayloadKg != 225 {
		t.Errorf("expected estimate 225, got %v", u.EstimatedMaxPayloadKg)
	}
	if u.UtilizationPct == nil || *u.UtilizationPct != 50 {
		t.Errorf("expected 50%% utilization, got %v", u.UtilizationPct)
	}
}

func TestMissionUtilization_MissingOrbitParams(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Missions = usecases.NewMissionService(&mockMissionRepo{
			getByNumberFn: func(ctx context.Context, number int) (*domain.Mission, error) {
				m := sampleMissions()[1] // no altitude/inclination
				return &m, nil
			},
		}, d.Capacity)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/missions/35/utilization", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var u domain.Utilization
	json.NewDecoder(resp.Body).Decode(&u)
	if u.EstimatedMaxPayloadKg != nil {
		t.Errorf("expected no estimate, got %v", *u.EstimatedMaxPayloadKg)
	}
	if u.Note == "" {
		t.Error("expected a note explaining the missing estimate")
	}
}

// ---- Analytics handler tests ----

func TestCustomerShare(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Analytics = usecases.NewAnalyticsService(&mockMissionRepo{
			customersFn: func(ctx context.Context, limit int) ([]domain.CustomerShare, error) {
				return []domain.CustomerShare{
					{Customer: "Synspective", Launches: 6, SharePct: 12.5},
					{Customer: "BlackSky", Launches: 5, SharePct: 10.4},
				}, nil
			},
		}, d.Capacity, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/analytics/customers?limit=5", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rows []domain.CustomerShare
	json.NewDecoder(resp.Body).Decode(&rows)
	if len(rows) != 2 || rows[0].Customer != "Synspective" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestSuccessRateByYear(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Analytics = usecases.NewAnalyticsService(&mockMissionRepo{
			successFn: func(ctx context.Context) ([]domain.YearlySuccessRate, error) {
				return []domain.YearlySuccessRate{
					{Year: 2022, TotalLaunches: 9, Successes: 9, SuccessRatePct: 100},
					{Year: 2023, TotalLaunches: 10, Successes: 9, SuccessRatePct: 90},
				}, nil
			},
		}, d.Capacity, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/analytics/success-rate", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rows []domain.YearlySuccessRate
	json.NewDecoder(resp.Body).Decode(&rows)
	if len(rows) != 2 || rows[1].SuccessRatePct != 90 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestUtilizationReport(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Analytics = usecases.NewAnalyticsService(&mockMissionRepo{
			listFn: func(ctx context.Context) ([]domain.Mission, error) {
				return sampleMissions(), nil
			},
		}, d.Capacity, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/analytics/utilization", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rows []domain.Utilization
	json.NewDecoder(resp.Body).Decode(&rows)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].EstimatedMaxPayloadKg == nil {
		t.Error("expected estimate for mission with orbit parameters")
	}
	if rows[1].Note == "" {
		t.Error("expected note for mission without orbit parameters")
	}
}

// ---- GraphQL tests ----

func TestGraphQL_CapacityEstimate(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"query":"{ capacityEstimate(altitude_km: 750, inclination_deg: 67.5) { estimated_max_payload_kg altitude_in_bounds } }"}`
	req := httptest.NewRequest("POST", "/graphql", jsonReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			CapacityEstimate struct {
				EstimatedMaxPayloadKg float64 `json:"estimated_max_payload_kg"`
				AltitudeInBounds      bool    `json:"altitude_in_bounds"`
			} `json:"capacityEstimate"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected GraphQL errors: %v", result.Errors)
	}
	if result.Data.CapacityEstimate.EstimatedMaxPayloadKg != 225 {
		t.Errorf("expected 225, got %v", result.Data.CapacityEstimate.EstimatedMaxPayloadKg)
	}
	if !result.Data.CapacityEstimate.AltitudeInBounds {
		t.Error("expected altitude_in_bounds true")
	}
}

// ---- System endpoint tests ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_MissingDatabase(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without a database, got %d", resp.StatusCode)
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := resp.Header.Get("X-API-Version"); got == "" {
		t.Error("expected X-API-Version header")
	}
}
