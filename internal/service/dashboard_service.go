package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

const latestReviewsLimit = 5

// DashboardService aggregates role-specific dashboards.
type DashboardService interface {
	Tutor(ctx context.Context, actor Actor) (dto.TutorDashboardResponse, error)
	Student(ctx context.Context, actor Actor) (dto.StudentDashboardResponse, error)
	Admin(ctx context.Context, actor Actor) (dto.AdminDashboardResponse, error)
}

type dashboardService struct {
	enrollments repository.EnrollmentRepository
	reviews     repository.ReviewRepository
	stats       repository.PlatformStatsRepository
	rates       CommissionRateSource
	gate        AccessGate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService constructs the dashboard service. The student view
// asks gate whether each enrollment unlocks content, so it agrees with
// document access.
func NewDashboardService(
	enrollments repository.EnrollmentRepository,
	reviews repository.ReviewRepository,
	stats repository.PlatformStatsRepository,
	rates CommissionRateSource,
	gate AccessGate,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		enrollments: enrollments,
		reviews:     reviews,
		stats:       stats,
		rates:       rates,
		gate:        gate,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) Tutor(ctx context.Context, actor Actor) (dto.TutorDashboardResponse, error) {
	if err := actor.require(models.RoleTutor); err != nil {
		return dto.TutorDashboardResponse{}, err
	}

	tracer := otel.Tracer("github.com/cyber-Je-di/tuta-pamodzi/internal/service/dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.tutor")
	span.SetAttributes(attribute.Int("dashboard.tutor_id", int(actor.ID)))
	defer span.End()

	counts, err := s.enrollments.CountByStatus(ctx, &actor.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_enrollments_failed")
		return dto.TutorDashboardResponse{}, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	totals, err := s.enrollments.PaymentTotals(ctx, &actor.ID, &monthStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment_totals_failed")
		return dto.TutorDashboardResponse{}, err
	}

	aggregate, err := s.reviews.Aggregate(ctx, actor.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "review_aggregate_failed")
		return dto.TutorDashboardResponse{}, err
	}

	latest, err := s.reviews.ListByTutor(ctx, actor.ID, latestReviewsLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "latest_reviews_failed")
		return dto.TutorDashboardResponse{}, err
	}

	return dto.TutorDashboardResponse{
		Students: dto.StudentCounts{
			Total:    counts.Total(),
			Pending:  counts[models.EnrollmentStatusPending],
			Approved: counts[models.EnrollmentStatusApproved],
			Rejected: counts[models.EnrollmentStatusRejected],
		},
		Revenue: dto.RevenueSummary{
			Period:          models.PeriodOf(now),
			Total:           roundMoney(totals.Amount),
			CommissionOwed:  roundMoney(totals.Commission),
			NetEarnings:     roundMoney(totals.Amount - totals.Commission),
			PaymentsCounted: int(totals.Count),
		},
		Reviews:       reviewStats(aggregate),
		LatestReviews: dto.NewReviewResponseSlice(latest),
		GeneratedAt:   now,
	}, nil
}

func (s *dashboardService) Student(ctx context.Context, actor Actor) (dto.StudentDashboardResponse, error) {
	if err := actor.require(models.RoleStudent); err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	enrollments, err := s.enrollments.List(ctx, repository.EnrollmentFilter{StudentID: &actor.ID})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	reviewed, err := s.reviews.ReviewedTutorIDs(ctx, actor.ID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	now := s.now()
	summaries := make([]dto.StudentEnrollmentSummary, 0, len(enrollments))
	for _, enrollment := range enrollments {
		paid, err := s.enrollments.HasPayment(ctx, enrollment.ID, "")
		if err != nil {
			return dto.StudentDashboardResponse{}, err
		}

		student := models.Account{ID: actor.ID}
		if enrollment.Student != nil {
			student = *enrollment.Student
		}
		access, err := s.gate.Unlocks(ctx, student, enrollment)
		if err != nil {
			return dto.StudentDashboardResponse{}, err
		}

		summaries = append(summaries, dto.StudentEnrollmentSummary{
			Enrollment:      dto.NewEnrollmentResponse(enrollment),
			Paid:            paid,
			ContentUnlocked: access.Allowed,
			Reviewed:        reviewed[enrollment.TutorID],
		})
	}

	return dto.StudentDashboardResponse{Enrollments: summaries, GeneratedAt: now}, nil
}

func (s *dashboardService) Admin(ctx context.Context, actor Actor) (dto.AdminDashboardResponse, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	platform, err := s.stats.Counts(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	counts, err := s.enrollments.CountByStatus(ctx, nil)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	totals, err := s.enrollments.PaymentTotals(ctx, nil, nil)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	rate, err := s.rates.CommissionRate(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	return dto.AdminDashboardResponse{
		Students: platform.Students,
		Tutors: dto.TutorCount{
			Pending:  platform.Tutors[models.TutorStatusPending],
			Approved: platform.Tutors[models.TutorStatusApproved],
			Rejected: platform.Tutors[models.TutorStatusRejected],
		},
		Universities: platform.Universities,
		Courses:      platform.Courses,
		Documents:    platform.Documents,
		Enrollments: dto.EnrollmentCount{
			Total:    counts.Total(),
			Pending:  counts[models.EnrollmentStatusPending],
			Approved: counts[models.EnrollmentStatusApproved],
			Rejected: counts[models.EnrollmentStatusRejected],
		},
		PaymentsTotal:         roundMoney(totals.Amount),
		CommissionTotal:       roundMoney(totals.Commission),
		CommissionRatePercent: roundMoney(rate * 100),
		GeneratedAt:           s.now(),
	}, nil
}
