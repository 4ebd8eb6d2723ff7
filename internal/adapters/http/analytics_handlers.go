package http

import (
	"github.com/gofiber/fiber/v2"
)

// CustomerShareHandler returns launches per customer.
func CustomerShareHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 10)
		rows, err := deps.Analytics.CustomerShare(c.Context(), limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(rows)
	}
}

// SuccessRateHandler returns per-year launch success rates.
func SuccessRateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := deps.Analytics.SuccessRateByYear(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(rows)
	}
}

// OrbitPayloadStatsHandler returns payload statistics per orbit type.
func OrbitPayloadStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := deps.Analytics.PayloadStatsByOrbitType(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(rows)
	}
}

// SiteUsageHandler returns launches per launch site.
func SiteUsageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := deps.Analytics.SiteUsage(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(rows)
	}
}

// UtilizationReportHandler returns actual-vs-estimated payload per mission.
func UtilizationReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := deps.Analytics.UtilizationReport(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(rows)
	}
}
