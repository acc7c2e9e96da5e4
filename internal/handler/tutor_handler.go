package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// TutorHandler serves the public tutor directory and administrator vetting.
type TutorHandler struct {
	service service.TutorService
	logger  zerolog.Logger
}

// NewTutorHandler constructs the handler.
func NewTutorHandler(service service.TutorService, logger zerolog.Logger) *TutorHandler {
	return &TutorHandler{
		service: service,
		logger:  logger.With().Str("component", "tutor_handler").Logger(),
	}
}

// RegisterPublic attaches the tutor directory.
func (h *TutorHandler) RegisterPublic(router fiber.Router) {
	router.Get("", h.listApproved)
}

// RegisterAdmin attaches vetting routes; the group must be admin-only.
func (h *TutorHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.listByStatus)
	router.Post("/:id/approve", h.approve)
	router.Post("/:id/reject", h.reject)
}

func (h *TutorHandler) listApproved(c *fiber.Ctx) error {
	tutors, err := h.service.ListApproved(withRequestContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "tutors retrieved", tutors)
}

func (h *TutorHandler) listByStatus(c *fiber.Ctx) error {
	status := c.Query("status", "pending")
	tutors, err := h.service.ListByStatus(withRequestContext(c), actorFromContext(c), status)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "tutors retrieved", tutors)
}

func (h *TutorHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	tutor, err := h.service.Approve(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "tutor approved", tutor)
}

func (h *TutorHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	tutor, err := h.service.Reject(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "tutor rejected", tutor)
}
