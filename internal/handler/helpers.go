package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/middleware"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

var notFoundErrors = []error{
	service.ErrAccountNotFound,
	service.ErrEnrollmentNotFound,
	service.ErrDocumentNotFound,
	service.ErrUniversityNotFound,
	service.ErrCategoryNotFound,
	service.ErrCourseNotFound,
	service.ErrSettingsNotFound,
}

var conflictErrors = []error{
	service.ErrInvalidTransition,
	service.ErrDuplicateEnrollment,
	service.ErrDuplicateReview,
	service.ErrDuplicateAffiliation,
	service.ErrAffiliationInUse,
	service.ErrUsernameTaken,
	service.ErrEmailTaken,
}

// handleError maps service errors onto the JSON envelope. Unknown errors are
// logged and reported as 500 without leaking details.
func handleError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var inputErr *service.InputError
	switch {
	case errors.As(err, &inputErr):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", inputErr.Fields)
	case errors.Is(err, service.ErrInvalidInput):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.Fail(c, fiber.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotEligible),
		errors.Is(err, service.ErrAccountPendingApproval):
		return utils.Fail(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.Fail(c, fiber.StatusRequestEntityTooLarge, err.Error(), nil)
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.Fail(c, fiber.StatusUnsupportedMediaType, err.Error(), nil)
	case errors.Is(err, context.Canceled):
		return utils.Fail(c, fiber.StatusRequestTimeout, "request cancelled", nil)
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return utils.Fail(c, fiber.StatusNotFound, err.Error(), nil)
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return utils.Fail(c, fiber.StatusConflict, err.Error(), nil)
		}
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
	return utils.Fail(c, fiber.StatusInternalServerError, "internal server error", nil)
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// actorFromContext builds the acting account from the claims JWTProtected stored.
func actorFromContext(c *fiber.Ctx) service.Actor {
	role, _ := models.ParseRole(userRoleFromContext(c))
	return service.Actor{ID: userIDFromContext(c), Role: role}
}

// withRequestContext returns the context CorrelationID seeded; it already
// carries the correlation id and a request scoped logger.
func withRequestContext(c *fiber.Ctx) context.Context {
	return c.UserContext()
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
