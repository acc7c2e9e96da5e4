package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/middleware"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// EnrollmentHandler drives the enrollment state machine and payment ledger.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches enrollment routes; the group must be authenticated.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}
	tutor := middleware.AuthOptions{Role: middleware.AuthRoleTutor}

	router.Post("", middleware.WithAuth(h.submit, student))
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("/:id/approve", middleware.WithAuth(h.approve, tutor))
	router.Post("/:id/reject", middleware.WithAuth(h.reject, tutor))
	router.Post("/:id/payments", middleware.WithAuth(h.recordPayment, tutor))
	router.Get("/:id/payments", h.listPayments)
}

func (h *EnrollmentHandler) submit(c *fiber.Ctx) error {
	var payload dto.EnrollmentSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	enrollment, err := h.service.Submit(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.Created(c, enrollment, "enrollment submitted")
}

func (h *EnrollmentHandler) list(c *fiber.Ctx) error {
	actor := actorFromContext(c)

	var (
		enrollments []dto.EnrollmentResponse
		err         error
	)
	if actor.Is(models.RoleTutor) {
		enrollments, err = h.service.ListForTutor(withRequestContext(c), actor, c.Query("status"))
	} else {
		enrollments, err = h.service.ListForStudent(withRequestContext(c), actor)
	}
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *EnrollmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.service.Get(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollment retrieved", enrollment)
}

func (h *EnrollmentHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.service.Approve(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollment approved", enrollment)
}

func (h *EnrollmentHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.service.Reject(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollment rejected", enrollment)
}

func (h *EnrollmentHandler) recordPayment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PaymentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	payment, err := h.service.RecordPayment(withRequestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.Created(c, payment, "payment recorded")
}

func (h *EnrollmentHandler) listPayments(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payments, err := h.service.ListPayments(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "payments retrieved", payments)
}
