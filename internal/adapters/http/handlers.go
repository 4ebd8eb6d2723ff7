package http

import (
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/orbitcap/orbitcap/internal/pkg/capacity"
	"github.com/orbitcap/orbitcap/internal/pkg/metrics"
)

// EstimateCapacityHandler interpolates maximum payload capacity for the
// given orbit parameters. Out-of-bounds queries still return an estimate,
// flagged through the in-bounds booleans.
func EstimateCapacityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		alt := c.QueryFloat("altitude_km", math.NaN())
		inc := c.QueryFloat("inclination_deg", math.NaN())

		if math.IsNaN(alt) || math.IsNaN(inc) {
			return errBadRequest(c, "altitude_km and inclination_deg are required")
		}

		res, err := deps.Capacity.Estimate(capacity.Query{
			AltitudeKm:     alt,
			InclinationDeg: inc,
		})
		if err != nil {
			if errors.Is(err, capacity.ErrValue) {
				metrics.EstimateRejected.Inc()
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		metrics.EstimatesServed.Inc()
		if !res.AltitudeInBounds {
			metrics.EstimatesOutOfBounds.WithLabelValues("altitude").Inc()
		}
		if !res.InclinationInBounds {
			metrics.EstimatesOutOfBounds.WithLabelValues("inclination").Inc()
		}

		return c.JSON(res)
	}
}

// CapacityGridHandler returns the full reference grid.
func CapacityGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		minKm, maxKm := deps.Capacity.Span()
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(fiber.Map{
			"altitude_span_km": []float64{minKm, maxKm},
			"points":           deps.Capacity.Grid(),
		})
	}
}

// ListMissionsHandler returns all missions with offset/limit pagination.
func ListMissionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		missions, err := deps.Missions.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(missions)
		if offset >= total {
			missions = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			missions = missions[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: missions, Pagination: pg})
	}
}

// GetMissionHandler returns a single mission by mission number.
func GetMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		number, err := c.ParamsInt("number")
		if err != nil || number <= 0 {
			return errBadRequest(c, "mission number must be a positive integer")
		}

		mission, err := deps.Missions.GetByNumber(c.Context(), number)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "mission not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(mission)
	}
}

// MissionUtilizationHandler compares a mission's actual payload against the
// interpolated capacity for its orbit.
func MissionUtilizationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		number, err := c.ParamsInt("number")
		if err != nil || number <= 0 {
			return errBadRequest(c, "mission number must be a positive integer")
		}

		u, err := deps.Missions.Utilization(c.Context(), number)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "mission not found")
			}
			if errors.Is(err, capacity.ErrValue) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(u)
	}
}

// DatasetStats holds row counts of the reference datasets.
type DatasetStats struct {
	Missions   int    `json:"missions"`
	GridPoints int    `json:"grid_points"`
	LastIngest string `json:"last_ingest,omitempty"`
}

// DatasetStatsHandler returns row counts from the reference tables.
func DatasetStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats DatasetStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM missions),
				(SELECT count(*) FROM capacity_grid),
				COALESCE((SELECT max(created_at)::text FROM missions), '')
		`)
		if err := row.Scan(&stats.Missions, &stats.GridPoints, &stats.LastIngest); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}
