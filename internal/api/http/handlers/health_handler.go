package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-platform/internal/persistence"
)

const probeTimeout = 2 * time.Second

// HealthHandler responds to liveness and readiness probes. Postgres
// gates readiness; Redis only backs the listing cache, so an outage is
// reported but does not take the service out of rotation.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready probes dependencies and reports per-dependency status.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
	defer cancel()

	deps := fiber.Map{"redis": "ok"}
	if err := h.redis.Ping(ctx); err != nil {
		deps["redis"] = "degraded: " + err.Error()
	}

	if err := h.postgres.Ping(ctx); err != nil {
		deps["postgres"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "STORE_UNAVAILABLE",
				"message": "primary store unavailable",
				"details": deps,
			},
		})
	}
	deps["postgres"] = "ok"

	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": deps,
	})
}
