package service

import (
	"context"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

// CommissionRateSource supplies the commission rate in force right now.
type CommissionRateSource interface {
	CommissionRate(ctx context.Context) (float64, error)
}

// SettingsService manages platform-wide settings.
type SettingsService interface {
	CommissionRateSource
	Get(ctx context.Context, actor Actor) (dto.SettingsResponse, error)
	Update(ctx context.Context, actor Actor, req dto.SettingsUpdateRequest) (dto.SettingsResponse, error)
}

type settingsService struct {
	repo        repository.SettingRepository
	defaultRate float64
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSettingsService constructs the settings service. defaultRate applies
// until the settings row has been seeded.
func NewSettingsService(repo repository.SettingRepository, defaultRate float64, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) SettingsService {
	return &settingsService{
		repo:        repo,
		defaultRate: defaultRate,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "settings_service").Logger(),
	}
}

func (s *settingsService) CommissionRate(ctx context.Context) (float64, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Float64("rate", s.defaultRate).Msg("settings row missing, using configured commission rate")
			return s.defaultRate, nil
		}
		return 0, err
	}
	return setting.CommissionRate, nil
}

func (s *settingsService) Get(ctx context.Context, actor Actor) (dto.SettingsResponse, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return dto.SettingsResponse{}, err
	}

	setting, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SettingsResponse{}, ErrSettingsNotFound
		}
		return dto.SettingsResponse{}, err
	}
	return dto.NewSettingsResponse(setting), nil
}

func (s *settingsService) Update(ctx context.Context, actor Actor, req dto.SettingsUpdateRequest) (dto.SettingsResponse, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return dto.SettingsResponse{}, err
	}
	if err := validateStruct(s.validator, req); err != nil {
		return dto.SettingsResponse{}, err
	}

	previous, err := s.CommissionRate(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	rate := math.Round(*req.CommissionRatePercent*100) / 10000
	setting, err := s.repo.UpdateCommissionRate(ctx, rate, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SettingsResponse{}, ErrSettingsNotFound
		}
		return dto.SettingsResponse{}, err
	}

	s.logger.Info().Float64("previous", previous).Float64("rate", rate).Uint("actor_id", actor.ID).Msg("commission rate updated")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "settings.update",
		EntityType: "settings",
		EntityID:   uintPtr(setting.ID),
		Metadata: map[string]interface{}{
			"previous_rate": previous,
			"rate":          rate,
		},
	})

	return dto.NewSettingsResponse(setting), nil
}
