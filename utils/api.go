package utils

import (
	fiber "github.com/gofiber/fiber/v2"
)

// MakeHTTPHandleFunc binds a dependency to a handler. A returned error is
// reported as a 500 with its message.
func MakeHTTPHandleFunc[T any](handler func(c *fiber.Ctx, dep T) error, dep T) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := handler(c, dep); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return nil
	}
}
