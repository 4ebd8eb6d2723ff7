package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint. Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}

		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case strings.HasPrefix(path, "/v1/capacity/grid"):
			ttl = "public, max-age=3600" // Grid only changes on ingestion

		case strings.HasPrefix(path, "/v1/capacity/estimate"):
			ttl = "public, max-age=600" // Pure function of the query

		case strings.HasPrefix(path, "/v1/analytics"):
			ttl = "public, max-age=300" // Aggregates refresh on ingestion

		case path == "/v1/datasets/status":
			ttl = "public, max-age=60" // Dataset stats: 1 min

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300" // 5 min default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
