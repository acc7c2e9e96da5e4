package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/middleware"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// AuthHandler registers accounts and manages sessions.
type AuthHandler struct {
	service      service.AuthService
	secureCookie bool
	logger       zerolog.Logger
}

// NewAuthHandler constructs the handler. secureCookie marks the session cookie
// Secure, which production deployments behind TLS want.
func NewAuthHandler(service service.AuthService, secureCookie bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		secureCookie: secureCookie,
		logger:       logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth routes. loginLimiter guards login; protected guards /me.
func (h *AuthHandler) Register(router fiber.Router, loginLimiter, protected fiber.Handler) {
	router.Post("/register/student", h.registerStudent)
	router.Post("/register/tutor", h.registerTutor)
	router.Post("/login", loginLimiter, h.login)
	router.Post("/logout", h.logout)
	router.Get("/me", protected, h.me)
}

func (h *AuthHandler) registerStudent(c *fiber.Ctx) error {
	var payload dto.StudentRegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	registered, err := h.service.RegisterStudent(withRequestContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.Created(c, registered, "student registered")
}

func (h *AuthHandler) registerTutor(c *fiber.Ctx) error {
	var payload dto.TutorRegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	account, err := h.service.RegisterTutor(withRequestContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.Created(c, account, "tutor registered, awaiting approval")
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	session, err := h.service.Login(withRequestContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.SendSuccess(c, "login successful", session)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.AuthCookieName)
	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	account, err := h.service.Me(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "current account", account)
}
