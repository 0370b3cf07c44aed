package handlers

import (
	"context"
	"time"

	"github.com/coldenflo/ICeducation/database"
	"github.com/gofiber/fiber/v2"
)

// VersionReader reports the persisted catalogue version
type VersionReader interface {
	Version(ctx context.Context) int
}

// HealthDeps is what the health check inspects
type HealthDeps struct {
	KV        database.KeyValue
	Catalogue VersionReader
}

// HandleCheckHealth handles GET /ping
func HandleCheckHealth(c *fiber.Ctx, deps HealthDeps) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	if err := deps.KV.HealthCheck(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":           "ok",
		"catalogueVersion": deps.Catalogue.Version(ctx),
		"currentVersion":   database.CurrentDataVersion,
	})
}
