package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds defaults only where the handler set none.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != fiber.MethodGet {
			return err
		}
		// Don't override if already set
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		// Default cache times by endpoint pattern
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/v1/terminals/search" || path == "/v1/search-terminals":
			ttl = "private, no-cache" // Availability changes with every booking

		case strings.HasPrefix(path, "/v1/terminals/") && strings.HasSuffix(path, "/bookings"):
			ttl = "private, no-cache" // Booking list of one terminal

		case strings.HasPrefix(path, "/v1/terminals/"):
			ttl = "public, max-age=15" // Single terminal, occupancy may flip

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600" // 1 hour for API docs

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=30" // 30s default for API endpoints
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
