package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/config"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
)

// Dependency states reported by the health endpoint.
const (
	DependencyUp       = "up"
	DependencyDown     = "down"
	DependencyDisabled = "disabled"
)

const healthCheckTimeout = 2 * time.Second

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	Dependencies map[string]string `json:"dependencies"`
}

// HealthHandler reports whether the API and its backing stores are reachable.
// The database is required; redis only backs the ranking cache, so a redis
// outage degrades the status without failing the check.
type HealthHandler struct {
	cfg    config.Config
	db     *gorm.DB
	redis  *redis.Client
	logger zerolog.Logger
}

// NewHealthHandler builds a health handler. Either store may be nil.
func NewHealthHandler(cfg config.Config, db *gorm.DB, redisClient *redis.Client, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		cfg:    cfg,
		db:     db,
		redis:  redisClient,
		logger: logger.With().Str("component", "health_handler").Logger(),
	}
}

// Check is the GET /health handler.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	payload := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Service:     h.cfg.AppName,
		Environment: h.cfg.AppEnv,
		Dependencies: map[string]string{
			"database": h.pingDatabase(ctx),
			"redis":    h.pingRedis(ctx),
		},
	}

	if payload.Dependencies["database"] == DependencyDown {
		payload.Status = "unavailable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.APIResponse{
			Success: false,
			Message: "database unreachable",
			Data:    payload,
		})
	}
	if payload.Dependencies["redis"] == DependencyDown {
		payload.Status = "degraded"
		return utils.SendSuccess(c, "ranking cache unreachable", payload)
	}
	return utils.SendSuccess(c, "service healthy", payload)
}

func (h *HealthHandler) pingDatabase(ctx context.Context) string {
	if h.db == nil {
		return DependencyDisabled
	}
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("database ping failed")
		return DependencyDown
	}
	return DependencyUp
}

func (h *HealthHandler) pingRedis(ctx context.Context) string {
	if h.redis == nil {
		return DependencyDisabled
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		h.logger.Warn().Err(err).Msg("redis ping failed")
		return DependencyDown
	}
	return DependencyUp
}
