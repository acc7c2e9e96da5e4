package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// DashboardHandler serves the per-role dashboards.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the tutor and student dashboards.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/tutor", h.tutor)
	router.Get("/student", h.student)
}

// RegisterAdmin attaches the platform dashboard; the group must be admin-only.
func (h *DashboardHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.admin)
}

func (h *DashboardHandler) tutor(c *fiber.Ctx) error {
	dashboard, err := h.service.Tutor(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "tutor dashboard", dashboard)
}

func (h *DashboardHandler) student(c *fiber.Ctx) error {
	dashboard, err := h.service.Student(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student dashboard", dashboard)
}

func (h *DashboardHandler) admin(c *fiber.Ctx) error {
	dashboard, err := h.service.Admin(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "admin dashboard", dashboard)
}
