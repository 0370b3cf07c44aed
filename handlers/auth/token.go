package auth

import (
	"github.com/coldenflo/ICeducation/utils/middleware"
	"github.com/coldenflo/ICeducation/utils/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Logout handles POST /api/v1/auth/logout. Signing out an unknown or
// already closed session still succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return response.SuccessWithMessage(c, "Logged out", nil)
	}

	if err := h.sessions.End(c.UserContext(), token); err != nil {
		h.log.Error("end session failed", zap.Error(err))
		return response.InternalServerError(c, "Failed to end session")
	}

	return response.SuccessWithMessage(c, "Logged out", nil)
}
