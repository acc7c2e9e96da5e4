package middleware

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Config customises the middleware registration pipeline.
type Config struct {
	Logger *zerolog.Logger
	// AllowedOrigins is a comma separated origin list; empty or "*" allows any.
	AllowedOrigins string
	// AllowCredentials lets browsers send the session cookie cross origin.
	// It only applies to an explicit origin list.
	AllowCredentials bool
}

// Register attaches the common middlewares used across the API. Access logs
// come from Observability, tagged with the correlation id.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}

	app.Use(recover.New())
	app.Use(CorrelationID(requestLogger))
	app.Use(Observability(requestLogger))
	app.Use(cors.New(corsConfig(cfg, requestLogger)))
}

func corsConfig(cfg Config, logger zerolog.Logger) cors.Config {
	origins := strings.TrimSpace(cfg.AllowedOrigins)
	if origins == "" {
		origins = "*"
	}

	credentials := cfg.AllowCredentials
	if credentials && origins == "*" {
		logger.Warn().Msg("cors credentials ignored for wildcard origins, set an explicit origin list")
		credentials = false
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: credentials,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + CorrelationHeader,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders:    CorrelationHeader,
	}
}
