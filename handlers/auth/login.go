package auth

import (
	"strings"
	"time"

	"github.com/coldenflo/ICeducation/model"
	"github.com/coldenflo/ICeducation/services"
	"github.com/coldenflo/ICeducation/utils/middleware"
	"github.com/coldenflo/ICeducation/utils/response"
	"github.com/coldenflo/ICeducation/utils/validation"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler signs admins in and out
type AuthHandler struct {
	store                *services.CatalogueStore
	sessions             *services.SessionService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
	log                  *zap.Logger
}

// NewAuthHandler creates a new auth handler. bruteForce may be nil.
func NewAuthHandler(store *services.CatalogueStore, sessions *services.SessionService, bruteForce *middleware.BruteForceProtection, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		store:                store,
		sessions:             sessions,
		bruteForceProtection: bruteForce,
		validator:            validation.NewValidator(),
		log:                  logger.Named("auth"),
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	User      model.PublicUser `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	// The sign-in form trims the username before submitting, so padded
	// usernames sign in here. The password and the store lookup stay exact.
	req.Username = strings.TrimSpace(req.Username)

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	ctx := c.UserContext()
	ip := c.IP()

	user, ok := h.store.Authenticate(ctx, req.Username, req.Password)
	if !ok {
		h.bruteForceProtection.RecordFailedAttempt(ctx, ip, req.Username)
		return response.Unauthorized(c, "Incorrect username or password.")
	}
	h.bruteForceProtection.RecordSuccessfulAttempt(ctx, ip)

	token, expiresAt, err := h.sessions.Start(ctx, user)
	if err != nil {
		h.log.Error("start session failed", zap.Error(err))
		return response.InternalServerError(c, "Failed to start session")
	}

	return response.SuccessWithMessage(c, "Login successful", LoginResponse{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
