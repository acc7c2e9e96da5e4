package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

// TutorService covers tutor directory reads and administrator vetting.
type TutorService interface {
	ListApproved(ctx context.Context) ([]dto.AccountResponse, error)
	ListByStatus(ctx context.Context, actor Actor, status string) ([]dto.AccountResponse, error)
	Approve(ctx context.Context, actor Actor, tutorID uint) (dto.AccountResponse, error)
	Reject(ctx context.Context, actor Actor, tutorID uint) (dto.AccountResponse, error)
}

type tutorService struct {
	accounts repository.AccountRepository
	cache    *RankingCache
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewTutorService constructs the tutor service.
func NewTutorService(accounts repository.AccountRepository, cache *RankingCache, activity ActivityRecorder, logger zerolog.Logger) TutorService {
	return &tutorService{
		accounts: accounts,
		cache:    cache,
		activity: activity,
		logger:   logger.With().Str("component", "tutor_service").Logger(),
	}
}

// ListApproved is the public directory used by student registration.
func (s *tutorService) ListApproved(ctx context.Context) ([]dto.AccountResponse, error) {
	tutors, err := s.accounts.ListTutors(ctx, models.TutorStatusApproved)
	if err != nil {
		return nil, err
	}
	return dto.NewAccountResponseSlice(tutors), nil
}

func (s *tutorService) ListByStatus(ctx context.Context, actor Actor, status string) ([]dto.AccountResponse, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}

	var filter models.TutorStatus
	switch parsed := models.TutorStatus(status); parsed {
	case "":
	case models.TutorStatusPending, models.TutorStatusApproved, models.TutorStatusRejected:
		filter = parsed
	default:
		return nil, invalidField("status", "status must be one of pending, approved, rejected")
	}

	tutors, err := s.accounts.ListTutors(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewAccountResponseSlice(tutors), nil
}

func (s *tutorService) Approve(ctx context.Context, actor Actor, tutorID uint) (dto.AccountResponse, error) {
	return s.vet(ctx, actor, tutorID, models.TutorStatusApproved)
}

func (s *tutorService) Reject(ctx context.Context, actor Actor, tutorID uint) (dto.AccountResponse, error) {
	return s.vet(ctx, actor, tutorID, models.TutorStatusRejected)
}

func (s *tutorService) vet(ctx context.Context, actor Actor, tutorID uint, to models.TutorStatus) (dto.AccountResponse, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return dto.AccountResponse{}, err
	}

	tutor, err := s.accounts.TransitionTutorStatus(ctx, tutorID, models.TutorStatusPending, to)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return dto.AccountResponse{}, ErrInvalidTransition
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.AccountResponse{}, ErrAccountNotFound
		default:
			return dto.AccountResponse{}, err
		}
	}

	s.cache.Invalidate(ctx)
	s.logger.Info().Uint("tutor_id", tutor.ID).Str("status", string(to)).Msg("tutor vetted")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "tutor." + vetAction(to),
		EntityType: "account",
		EntityID:   uintPtr(tutor.ID),
		Metadata:   map[string]interface{}{"username": tutor.Username},
	})

	return dto.NewAccountResponse(tutor), nil
}

func vetAction(status models.TutorStatus) string {
	if status == models.TutorStatusApproved {
		return "approve"
	}
	return "reject"
}
