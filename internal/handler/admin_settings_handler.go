package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// AdminSettingsHandler manages the platform commission rate.
type AdminSettingsHandler struct {
	service service.SettingsService
	logger  zerolog.Logger
}

// NewAdminSettingsHandler constructs the handler.
func NewAdminSettingsHandler(service service.SettingsService, logger zerolog.Logger) *AdminSettingsHandler {
	return &AdminSettingsHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_settings_handler").Logger(),
	}
}

// Register attaches settings routes to the router group.
func (h *AdminSettingsHandler) Register(router fiber.Router) {
	router.Get("", h.get)
	router.Put("", h.update)
}

func (h *AdminSettingsHandler) get(c *fiber.Ctx) error {
	settings, err := h.service.Get(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "settings retrieved", settings)
}

func (h *AdminSettingsHandler) update(c *fiber.Ctx) error {
	var payload dto.SettingsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	settings, err := h.service.Update(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "settings updated", settings)
}
