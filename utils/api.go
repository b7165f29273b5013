package utils

import (
	"github.com/dibyendu2004/BrightPath/database"
	"github.com/dibyendu2004/BrightPath/utils/response"
	fiber "github.com/gofiber/fiber/v2"
)

// MakeHTTPHandleFunc binds a store-aware handler to a fiber handler
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := handler(c, store); err != nil {
			return response.InternalServerError(c, "")
		}
		return nil
	}
}
