package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminAuditLog records every admin catalogue change after it has been
// handled. It must run after RequireAdmin.
func AdminAuditLog(logger *zap.Logger, action string) fiber.Handler {
	audit := logger.Named("audit")
	return func(c *fiber.Ctx) error {
		err := c.Next()

		user, _ := GetUser(c)
		fields := []zap.Field{
			zap.String("action", action),
			zap.String("admin", user.Username),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.String("ip", c.IP()),
		}
		if id := c.Params("id"); id != "" {
			fields = append(fields, zap.String("resource_id", id))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		audit.Info("admin action", fields...)

		return err
	}
}
