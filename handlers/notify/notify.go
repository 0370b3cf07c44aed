package notify

import (
	"errors"

	"github.com/coldenflo/ICeducation/services"
	"github.com/coldenflo/ICeducation/utils/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NotifyHandler relays website form submissions
type NotifyHandler struct {
	notify *services.NotifyService
	log    *zap.Logger
}

// NewNotifyHandler creates a new notify handler
func NewNotifyHandler(notify *services.NotifyService, logger *zap.Logger) *NotifyHandler {
	return &NotifyHandler{
		notify: notify,
		log:    logger.Named("notify_handler"),
	}
}

// Notify handles POST /api/notify
func (h *NotifyHandler) Notify(c *fiber.Ctx) error {
	if !h.notify.Configured() {
		return response.Status(c, fiber.StatusInternalServerError, "error", "Server configuration error")
	}

	if !c.Is("json") {
		return response.Status(c, fiber.StatusBadRequest, "error", "Request payload must be JSON")
	}
	req, err := services.ParseNotifyRequest(c.Body())
	if err != nil {
		return response.Status(c, fiber.StatusBadRequest, "error", "Request payload must be JSON")
	}

	err = h.notify.Notify(c.UserContext(), req)
	if err == nil {
		return response.Status(c, fiber.StatusOK, "ok", "Notification delivered")
	}

	var channelErr *services.ChannelError
	switch {
	case errors.Is(err, services.ErrContactFieldsMissing):
		return response.Status(c, fiber.StatusBadRequest, "error", "Name, email, and message are required")
	case errors.Is(err, services.ErrUnknownForm):
		return response.Status(c, fiber.StatusBadRequest, "error", "Unable to determine form type or missing fields")
	case errors.Is(err, services.ErrNotifierNotConfigured):
		return response.Status(c, fiber.StatusInternalServerError, "error", "Server configuration error")
	case errors.As(err, &channelErr):
		return response.Status(c, fiber.StatusInternalServerError, "error", channelErr.Error())
	case errors.Is(err, services.ErrDispatchTimeout):
		return response.Status(c, fiber.StatusInternalServerError, "error", "Notification dispatch timed out")
	default:
		return response.Status(c, fiber.StatusInternalServerError, "error", "Network error while sending notification")
	}
}

// Test handles GET /api/test
func (h *NotifyHandler) Test(c *fiber.Ctx) error {
	return response.Status(c, fiber.StatusOK, "ok", "Test endpoint is working")
}
