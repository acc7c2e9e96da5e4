package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// AffiliationHandler serves the university/category/course taxonomy.
type AffiliationHandler struct {
	service service.AffiliationService
	logger  zerolog.Logger
}

// NewAffiliationHandler constructs the handler.
func NewAffiliationHandler(service service.AffiliationService, logger zerolog.Logger) *AffiliationHandler {
	return &AffiliationHandler{
		service: service,
		logger:  logger.With().Str("component", "affiliation_handler").Logger(),
	}
}

// RegisterPublic attaches the read-only listings used by registration forms.
func (h *AffiliationHandler) RegisterPublic(router fiber.Router) {
	router.Get("/universities", h.listUniversities)
	router.Get("/universities/:id/categories", h.listCategories)
	router.Get("/categories/:id/courses", h.listCourses)
}

// RegisterAdmin attaches create and delete routes; the group must be admin-only.
func (h *AffiliationHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/universities", h.createUniversity)
	router.Delete("/universities/:id", h.deleteUniversity)
	router.Post("/universities/:id/categories", h.createCategory)
	router.Delete("/categories/:id", h.deleteCategory)
	router.Post("/categories/:id/courses", h.createCourse)
	router.Delete("/courses/:id", h.deleteCourse)
}

func (h *AffiliationHandler) listUniversities(c *fiber.Ctx) error {
	universities, err := h.service.ListUniversities(withRequestContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "universities retrieved", universities)
}

func (h *AffiliationHandler) listCategories(c *fiber.Ctx) error {
	universityID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	categories, err := h.service.ListCategories(withRequestContext(c), universityID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "categories retrieved", categories)
}

func (h *AffiliationHandler) listCourses(c *fiber.Ctx) error {
	categoryID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	courses, err := h.service.ListCourses(withRequestContext(c), categoryID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *AffiliationHandler) createUniversity(c *fiber.Ctx) error {
	var payload dto.UniversityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	university, err := h.service.CreateUniversity(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.Created(c, university, "university created")
}

func (h *AffiliationHandler) deleteUniversity(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteUniversity(withRequestContext(c), actorFromContext(c), id); err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "university deleted", fiber.Map{"id": id})
}

func (h *AffiliationHandler) createCategory(c *fiber.Ctx) error {
	universityID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CategoryCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	category, err := h.service.CreateCategory(withRequestContext(c), actorFromContext(c), universityID, payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.Created(c, category, "category created")
}

func (h *AffiliationHandler) deleteCategory(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteCategory(withRequestContext(c), actorFromContext(c), id); err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "category deleted", fiber.Map{"id": id})
}

func (h *AffiliationHandler) createCourse(c *fiber.Ctx) error {
	categoryID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	course, err := h.service.CreateCourse(withRequestContext(c), actorFromContext(c), categoryID, payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.Created(c, course, "course created")
}

func (h *AffiliationHandler) deleteCourse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteCourse(withRequestContext(c), actorFromContext(c), id); err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "course deleted", fiber.Map{"id": id})
}
