package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/database"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
)

// HandleRoot reports that the server is up
func HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Pinger is an optional dependency checked by the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleCheckHealth reports liveness after pinging the database and, when
// configured, the cache. A nil cache is reported as disabled.
func HandleCheckHealth(store database.Storage, cache Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			return response.ServiceUnavailable(c, "Database unavailable")
		}

		cacheStatus := "disabled"
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				return response.ServiceUnavailable(c, "Cache unavailable")
			}
			cacheStatus = "ok"
		}

		return c.JSON(fiber.Map{"status": "ok", "database": "ok", "cache": cacheStatus})
	}
}
