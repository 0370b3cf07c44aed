package auth

import (
	"github.com/coldenflo/ICeducation/utils/middleware"
	"github.com/coldenflo/ICeducation/utils/response"
	"github.com/gofiber/fiber/v2"
)

// Me handles GET /api/v1/auth/me. Runs behind AuthMiddleware.Required.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}
	return response.Success(c, user)
}
