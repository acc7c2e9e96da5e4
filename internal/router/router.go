package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/config"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/handler"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/middleware"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler          *handler.AuthHandler
	TutorHandler         *handler.TutorHandler
	AffiliationHandler   *handler.AffiliationHandler
	EnrollmentHandler    *handler.EnrollmentHandler
	DocumentHandler      *handler.DocumentHandler
	ReviewHandler        *handler.ReviewHandler
	DashboardHandler     *handler.DashboardHandler
	AdminActivityHandler *handler.AdminActivityHandler
	AdminSettingsHandler *handler.AdminSettingsHandler
	StreamHandler        *handler.StreamHandler
	HealthHandler        *handler.HealthHandler
	JWTMiddleware        fiber.Handler
	LoginLimiter         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	health := deps.HealthHandler
	if health == nil {
		health = handler.NewHealthHandler(cfg, nil, nil, zerolog.Nop())
	}
	api.Get("/health", health.Check)

	// Use provided middlewares, or no-ops if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	loginLimiter := deps.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public: registration, login and the read-only directory
	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), loginLimiter, jwtMiddleware)
	}
	if deps.AffiliationHandler != nil {
		deps.AffiliationHandler.RegisterPublic(api)
	}
	tutors := api.Group("/tutors")
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.RegisterPublic(tutors)
	}
	if deps.TutorHandler != nil {
		deps.TutorHandler.RegisterPublic(tutors)
	}

	// Authenticated
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.Register(api.Group("/enrollments", jwtMiddleware))
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.Register(api.Group("/documents", jwtMiddleware))
	}
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(api.Group("/reviews", jwtMiddleware))
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", jwtMiddleware))
	}
	if deps.StreamHandler != nil {
		deps.StreamHandler.Register(api.Group("/stream", jwtMiddleware))
	}

	// Admin
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
	if deps.TutorHandler != nil {
		deps.TutorHandler.RegisterAdmin(admin.Group("/tutors"))
	}
	if deps.AffiliationHandler != nil {
		deps.AffiliationHandler.RegisterAdmin(admin)
	}
	if deps.AdminSettingsHandler != nil {
		deps.AdminSettingsHandler.Register(admin.Group("/settings"))
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activity"))
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterAdmin(admin.Group("/dashboard"))
	}
}
