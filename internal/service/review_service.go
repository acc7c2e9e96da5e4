package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

const (
	minScore         = 1
	maxScore         = 5
	maxCommentLength = 500
)

// ReviewService manages the append-only review ledger and the public ranking.
type ReviewService interface {
	Submit(ctx context.Context, actor Actor, req dto.ReviewCreateRequest) (dto.ReviewResponse, error)
	ListForTutor(ctx context.Context, tutorID uint) ([]dto.ReviewResponse, error)
	Stats(ctx context.Context, tutorID uint) (dto.ReviewStats, error)
	Ranking(ctx context.Context) ([]dto.TutorRankingEntry, error)
}

type reviewService struct {
	reviews     repository.ReviewRepository
	enrollments repository.EnrollmentRepository
	accounts    repository.AccountRepository
	cache       *RankingCache
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewReviewService constructs the review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	enrollments repository.EnrollmentRepository,
	accounts repository.AccountRepository,
	cache *RankingCache,
	validate *validator.Validate,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		reviews:     reviews,
		enrollments: enrollments,
		accounts:    accounts,
		cache:       cache,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "review_service").Logger(),
	}
}

func (s *reviewService) Submit(ctx context.Context, actor Actor, req dto.ReviewCreateRequest) (dto.ReviewResponse, error) {
	if err := actor.require(models.RoleStudent); err != nil {
		return dto.ReviewResponse{}, err
	}
	if err := validateStruct(s.validator, req); err != nil {
		return dto.ReviewResponse{}, err
	}

	enrollment, err := s.enrollments.FindByPair(ctx, actor.ID, req.TutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrNotEligible
		}
		return dto.ReviewResponse{}, err
	}
	if !enrollment.IsApproved() {
		return dto.ReviewResponse{}, ErrNotEligible
	}

	exists, err := s.reviews.ExistsForPair(ctx, actor.ID, req.TutorID)
	if err != nil {
		return dto.ReviewResponse{}, err
	}
	if exists {
		return dto.ReviewResponse{}, ErrDuplicateReview
	}

	comment, err := s.checkReview(req)
	if err != nil {
		return dto.ReviewResponse{}, err
	}

	review := models.Review{
		StudentID:            actor.ID,
		TutorID:              req.TutorID,
		Rating:               req.Rating,
		ContentClearScore:    req.ContentClearScore,
		TutorResponsiveScore: req.TutorResponsiveScore,
		Comment:              comment,
	}
	if err := s.reviews.Create(ctx, &review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ReviewResponse{}, ErrDuplicateReview
		}
		return dto.ReviewResponse{}, err
	}

	s.cache.Invalidate(ctx)
	s.logger.Info().Uint("tutor_id", review.TutorID).Int("rating", review.Rating).Msg("review submitted")

	return dto.NewReviewResponse(review), nil
}

func (s *reviewService) checkReview(req dto.ReviewCreateRequest) (string, error) {
	fields := map[string]string{}
	scores := []struct {
		field string
		value int
	}{
		{"rating", req.Rating},
		{"content_clear_score", req.ContentClearScore},
		{"tutor_responsive_score", req.TutorResponsiveScore},
	}
	for _, score := range scores {
		if score.value < minScore || score.value > maxScore {
			fields[score.field] = score.field + " must be between 1 and 5"
		}
	}

	comment := strings.TrimSpace(s.sanitizer.Sanitize(req.Comment))
	if utf8.RuneCountInString(comment) > maxCommentLength {
		fields["comment"] = "comment must be at most 500 characters"
	}

	if len(fields) > 0 {
		return "", &InputError{Fields: fields}
	}
	return comment, nil
}

func (s *reviewService) ListForTutor(ctx context.Context, tutorID uint) ([]dto.ReviewResponse, error) {
	if _, err := s.approvedTutor(ctx, tutorID); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByTutor(ctx, tutorID, 0)
	if err != nil {
		return nil, err
	}
	return dto.NewReviewResponseSlice(reviews), nil
}

func (s *reviewService) Stats(ctx context.Context, tutorID uint) (dto.ReviewStats, error) {
	if _, err := s.approvedTutor(ctx, tutorID); err != nil {
		return dto.ReviewStats{}, err
	}

	aggregate, err := s.reviews.Aggregate(ctx, tutorID)
	if err != nil {
		return dto.ReviewStats{}, err
	}
	return reviewStats(aggregate), nil
}

func (s *reviewService) Ranking(ctx context.Context) ([]dto.TutorRankingEntry, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	rows, err := s.reviews.Ranking(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.TutorRankingEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, dto.TutorRankingEntry{
			TutorID:       row.TutorID,
			FullName:      row.FullName,
			Username:      row.Username,
			UniversityID:  row.UniversityID,
			ReviewCount:   row.ReviewCount,
			AverageRating: roundMoney(row.AverageRating),
		})
	}

	s.cache.Set(ctx, entries)
	return entries, nil
}

func (s *reviewService) approvedTutor(ctx context.Context, tutorID uint) (models.Account, error) {
	tutor, err := s.accounts.GetByID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, err
	}
	if !tutor.IsActiveTutor() {
		return models.Account{}, ErrAccountNotFound
	}
	return tutor, nil
}

func reviewStats(aggregate repository.ReviewAggregate) dto.ReviewStats {
	return dto.ReviewStats{
		Count:               aggregate.Count,
		AverageRating:       roundMoney(aggregate.AverageRating),
		AverageContentClear: roundMoney(aggregate.AverageContentClear),
		AverageResponsive:   roundMoney(aggregate.AverageResponsive),
	}
}
