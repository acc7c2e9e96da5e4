package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/config"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/database"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/events"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/handler"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/middleware"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/router"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/utils"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/validation"
	cloud "github.com/cyber-Je-di/tuta-pamodzi/pkg/cloudinary"
	"github.com/cyber-Je-di/tuta-pamodzi/pkg/localstore"
	"github.com/cyber-Je-di/tuta-pamodzi/pkg/mailer"
	"github.com/cyber-Je-di/tuta-pamodzi/pkg/s3store"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(ctx, db, cfg.DatabaseDriver); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, tutor ranking is served uncached")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	storage, err := newFileStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to configure document storage")
	}

	validate := validation.New()

	accountRepo := repository.NewAccountRepository(db)
	affiliationRepo := repository.NewAffiliationRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	statsRepo := repository.NewPlatformStatsRepository(db)

	hub := events.NewHub()
	sinks := []events.Publisher{hub}
	if publisher := events.NewNATSPublisher(natsConn, cfg.NATSSubject); publisher != nil {
		sinks = append(sinks, publisher)
	}
	if publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic); publisher != nil {
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}
	if cfg.SendgridAPIKey != "" {
		sender, err := mailer.NewSendGrid(cfg.SendgridAPIKey, cfg.MailFromAddress, cfg.MailFromName, cfg.AppName, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure sendgrid")
		}
		if notifier := events.NewMailNotifier(sender, accountRepo); notifier != nil {
			sinks = append(sinks, notifier)
		}
	}
	fanout := events.NewFanout("", logger, sinks...)
	if err := events.RelayNATS(ctx, natsConn, cfg.NATSSubject, fanout.Source(), hub, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to relay enrollment events")
	}
	logger.Info().Strs("sinks", fanout.Sinks()).Msg("enrollment event sinks configured")

	activityService := service.NewActivityService(activityRepo, logger)
	settingsService := service.NewSettingsService(settingRepo, cfg.DefaultCommissionRate, activityService, validate, logger)
	rankingCache := service.NewRankingCache(redisClient, cfg.RankingCacheTTL, logger)
	accessGate := service.NewAccessGate(enrollmentRepo, cfg.AccessPeriodPolicy)

	authService := service.NewAuthService(accountRepo, affiliationRepo, fanout, activityService, cfg.JWTSecret, cfg.JWTTTL, validate, logger)
	tutorService := service.NewTutorService(accountRepo, rankingCache, activityService, logger)
	affiliationService := service.NewAffiliationService(affiliationRepo, activityService, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, accountRepo, settingsService, fanout, activityService, validate, logger)
	documentService := service.NewDocumentService(documentRepo, affiliationRepo, accountRepo, accessGate, storage, cfg.UploadMaxSizeMB, validate, logger)
	reviewService := service.NewReviewService(reviewRepo, enrollmentRepo, accountRepo, rankingCache, validate, logger)
	dashboardService := service.NewDashboardService(enrollmentRepo, reviewRepo, statsRepo, settingsService, accessGate, logger)
	bootstrapService := service.NewBootstrapService(settingRepo, affiliationRepo, accountRepo, cfg.DefaultCommissionRate, service.AdminCredentials{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		FullName: cfg.AdminFullName,
		Password: cfg.AdminPassword,
	}, validate, logger)

	report, err := bootstrapService.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to bootstrap platform data")
	}
	logger.Info().
		Bool("settings_created", report.SettingsCreated).
		Strs("universities_created", report.UniversitiesCreated).
		Bool("admin_created", report.AdminCreated).
		Msg("bootstrap complete")

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
			if status >= fiber.StatusInternalServerError {
				logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled request error")
				return utils.SendError(c, status, "internal server error")
			}
			return utils.SendError(c, status, err.Error())
		},
	})

	middleware.Register(app, middleware.Config{
		Logger:           &logger,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: cfg.CORSAllowCredentials,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:          handler.NewAuthHandler(authService, cfg.AppEnv == "production", logger),
		TutorHandler:         handler.NewTutorHandler(tutorService, logger),
		AffiliationHandler:   handler.NewAffiliationHandler(affiliationService, logger),
		EnrollmentHandler:    handler.NewEnrollmentHandler(enrollmentService, logger),
		DocumentHandler:      handler.NewDocumentHandler(documentService, logger),
		ReviewHandler:        handler.NewReviewHandler(reviewService, logger),
		DashboardHandler:     handler.NewDashboardHandler(dashboardService, logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activityService, logger),
		AdminSettingsHandler: handler.NewAdminSettingsHandler(settingsService, logger),
		StreamHandler:        handler.NewStreamHandler(hub, logger),
		HealthHandler:        handler.NewHealthHandler(cfg, db, redisClient, logger),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
		LoginLimiter:         middleware.RateLimit("login", cfg.LoginRateLimit, cfg.LoginRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(ctx, app, logger)
}

func newFileStorage(ctx context.Context, cfg config.Config, logger zerolog.Logger) (service.FileStorage, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return localstore.New(cfg.LocalStorageDir, logger)
	case "cloudinary":
		return cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	case "s3":
		return s3store.New(ctx, s3store.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
