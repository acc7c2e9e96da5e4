package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/middleware"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// DocumentHandler handles tutor uploads and gated student access to documents.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register attaches document routes; the group must be authenticated.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Post("", middleware.WithAuth(h.upload, middleware.AuthOptions{Role: middleware.AuthRoleTutor}))
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/download", h.download)
}

func (h *DocumentHandler) upload(c *fiber.Ctx) error {
	payload := dto.DocumentUploadRequest{Title: c.FormValue("title")}
	if raw := strings.TrimSpace(c.FormValue("course_id")); raw != "" {
		courseID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.Fail(c, fiber.StatusBadRequest, "validation failed", fiber.Map{"course_id": "course_id must be a number"})
		}
		payload.CourseID = uint(courseID)
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	document, err := h.service.Upload(withRequestContext(c), actorFromContext(c), payload, file)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.Created(c, document, "document uploaded")
}

func (h *DocumentHandler) list(c *fiber.Ctx) error {
	actor := actorFromContext(c)

	var (
		documents []dto.DocumentResponse
		err       error
	)
	if actor.Is(models.RoleTutor) {
		documents, err = h.service.ListForTutor(withRequestContext(c), actor)
	} else {
		documents, err = h.service.ListForStudent(withRequestContext(c), actor)
	}
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "documents retrieved", documents)
}

func (h *DocumentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	document, err := h.service.Get(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "document retrieved", document)
}

func (h *DocumentHandler) download(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	opened, err := h.service.Open(withRequestContext(c), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	if opened.RedirectURL != "" {
		return c.Redirect(opened.RedirectURL, fiber.StatusFound)
	}

	c.Set(fiber.HeaderContentType, opened.Document.MimeType)
	if err := c.Download(opened.LocalPath, opened.Document.FileName); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("document_id", id).Msg("failed to stream document")
		return utils.SendError(c, fiber.StatusNotFound, "document file missing")
	}
	return nil
}
