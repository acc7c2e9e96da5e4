package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/config"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/database"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/validation"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("component", "admin_cli").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	cli := commandLine{
		out: os.Stdout,
		migrate: func(ctx context.Context) error {
			return database.Migrate(ctx, db, cfg.DatabaseDriver)
		},
		bootstrap: service.NewBootstrapService(
			repository.NewSettingRepository(db),
			repository.NewAffiliationRepository(db),
			repository.NewAccountRepository(db),
			cfg.DefaultCommissionRate,
			service.AdminCredentials{
				Username: cfg.AdminUsername,
				Email:    cfg.AdminEmail,
				FullName: cfg.AdminFullName,
				Password: cfg.AdminPassword,
			},
			validation.New(),
			logger,
		),
	}

	if err := cli.run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Error().Err(err).Msg("command failed")
		}
		os.Exit(1)
	}
}
