package handlers

import (
	"github.com/dibyendu2004/BrightPath/database"
	"github.com/gofiber/fiber/v2"
)

// HandleRoot answers the bare liveness probe
func HandleRoot(c *fiber.Ctx) error {
	return c.SendString("API is Working")
}

// HandleCheckHealth reports database reachability
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success":  false,
			"status":   "degraded",
			"database": "unreachable",
		})
	}
	return c.JSON(fiber.Map{"success": true, "status": "ok", "database": "ok"})
}
