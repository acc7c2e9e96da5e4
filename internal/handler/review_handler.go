package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// ReviewHandler accepts student reviews and serves the public review views.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// RegisterPublic attaches ranking and per-tutor review routes under /tutors.
func (h *ReviewHandler) RegisterPublic(router fiber.Router) {
	router.Get("/ranking", h.ranking)
	router.Get("/:id/reviews", h.listForTutor)
	router.Get("/:id/reviews/stats", h.stats)
}

// Register attaches review submission; the group must be authenticated.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
}

func (h *ReviewHandler) submit(c *fiber.Ctx) error {
	var payload dto.ReviewCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	review, err := h.service.Submit(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.Created(c, review, "review submitted")
}

func (h *ReviewHandler) listForTutor(c *fiber.Ctx) error {
	tutorID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reviews, err := h.service.ListForTutor(withRequestContext(c), tutorID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "reviews retrieved", reviews)
}

func (h *ReviewHandler) stats(c *fiber.Ctx) error {
	tutorID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.Stats(withRequestContext(c), tutorID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "review stats", stats)
}

func (h *ReviewHandler) ranking(c *fiber.Ctx) error {
	ranking, err := h.service.Ranking(withRequestContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "tutor ranking", ranking)
}
