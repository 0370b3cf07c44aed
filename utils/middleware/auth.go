package middleware

import (
	"strings"

	"github.com/coldenflo/ICeducation/model"
	"github.com/coldenflo/ICeducation/services"
	"github.com/coldenflo/ICeducation/utils/response"
	"github.com/gofiber/fiber/v2"
)

const (
	localUser  = "user"
	localToken = "token"
)

// AuthMiddleware resolves bearer tokens to signed-in users
type AuthMiddleware struct {
	sessions *services.SessionService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions *services.SessionService) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// BearerToken extracts the token from "Authorization: Bearer <token>"
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Required rejects requests without an open session
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return response.Unauthorized(c, "Missing authorization token")
		}

		user, ok := m.sessions.Current(c.UserContext(), token)
		if !ok {
			return response.Unauthorized(c, "Session expired or signed out")
		}

		c.Locals(localUser, user)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// RequireAdmin rejects requests without an open admin session
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return response.Unauthorized(c, "Missing authorization token")
		}

		user, ok := m.sessions.Current(c.UserContext(), token)
		if !ok {
			return response.Unauthorized(c, "Session expired or signed out")
		}
		if !user.IsAdmin {
			return response.Forbidden(c, "Admin access required")
		}

		c.Locals(localUser, user)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// GetUser extracts the signed-in user from context
func GetUser(c *fiber.Ctx) (model.PublicUser, bool) {
	user, ok := c.Locals(localUser).(model.PublicUser)
	return user, ok
}

// GetToken extracts the bearer token accepted by Required
func GetToken(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(localToken).(string)
	return token, ok
}
