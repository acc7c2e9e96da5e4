package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/events"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/observability"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

// EnrollmentEventPublisher receives enrollment events after commit.
type EnrollmentEventPublisher interface {
	Publish(ctx context.Context, event events.EnrollmentEvent)
}

// EnrollmentService drives the enrollment state machine and payment ledger.
type EnrollmentService interface {
	Submit(ctx context.Context, actor Actor, req dto.EnrollmentSubmitRequest) (dto.EnrollmentResponse, error)
	Approve(ctx context.Context, actor Actor, enrollmentID uint) (dto.EnrollmentResponse, error)
	Reject(ctx context.Context, actor Actor, enrollmentID uint) (dto.EnrollmentResponse, error)
	RecordPayment(ctx context.Context, actor Actor, enrollmentID uint, req dto.PaymentCreateRequest) (dto.PaymentResponse, error)
	ListForTutor(ctx context.Context, actor Actor, status string) ([]dto.EnrollmentResponse, error)
	ListForStudent(ctx context.Context, actor Actor) ([]dto.EnrollmentResponse, error)
	Get(ctx context.Context, actor Actor, enrollmentID uint) (dto.EnrollmentResponse, error)
	ListPayments(ctx context.Context, actor Actor, enrollmentID uint) ([]dto.PaymentResponse, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	accounts    repository.AccountRepository
	rates       CommissionRateSource
	publisher   EnrollmentEventPublisher
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewEnrollmentService constructs the enrollment service. publisher and
// activity may be nil.
func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	accounts repository.AccountRepository,
	rates CommissionRateSource,
	publisher EnrollmentEventPublisher,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		accounts:    accounts,
		rates:       rates,
		publisher:   publisher,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		tracer:      otel.Tracer("github.com/cyber-Je-di/tuta-pamodzi/internal/service/enrollment"),
		now:         time.Now,
	}
}

func (s *enrollmentService) Submit(ctx context.Context, actor Actor, req dto.EnrollmentSubmitRequest) (dto.EnrollmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.submit", trace.WithAttributes(
		attribute.Int("enrollment.student_id", int(actor.ID)),
		attribute.Int("enrollment.tutor_id", int(req.TutorID)),
	))
	defer span.End()

	enrollment, err := s.submit(ctx, actor, req)
	observeTransition(span, "submit", err)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.emit(ctx, events.TypeSubmitted, enrollment, nil)
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "enrollment.submit",
		EntityType: "enrollment",
		EntityID:   uintPtr(enrollment.ID),
		Metadata:   map[string]interface{}{"tutor_id": enrollment.TutorID},
	})

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) submit(ctx context.Context, actor Actor, req dto.EnrollmentSubmitRequest) (models.Enrollment, error) {
	if err := actor.require(models.RoleStudent); err != nil {
		return models.Enrollment{}, err
	}
	if err := validateStruct(s.validator, req); err != nil {
		return models.Enrollment{}, err
	}

	tutor, err := s.accounts.GetByID(ctx, req.TutorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Enrollment{}, err
	}
	if err != nil || !tutor.IsActiveTutor() {
		return models.Enrollment{}, invalidField("tutor_id", "tutor_id must reference an approved tutor")
	}

	if _, err := s.enrollments.FindByPair(ctx, actor.ID, tutor.ID); err == nil {
		return models.Enrollment{}, ErrDuplicateEnrollment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Enrollment{}, err
	}

	enrollment := models.Enrollment{
		StudentID: actor.ID,
		TutorID:   tutor.ID,
		Status:    models.EnrollmentStatusPending,
	}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Enrollment{}, ErrDuplicateEnrollment
		}
		return models.Enrollment{}, err
	}

	return s.enrollments.GetByID(ctx, enrollment.ID)
}

func (s *enrollmentService) Approve(ctx context.Context, actor Actor, enrollmentID uint) (dto.EnrollmentResponse, error) {
	return s.decide(ctx, actor, enrollmentID, models.EnrollmentStatusApproved)
}

func (s *enrollmentService) Reject(ctx context.Context, actor Actor, enrollmentID uint) (dto.EnrollmentResponse, error) {
	return s.decide(ctx, actor, enrollmentID, models.EnrollmentStatusRejected)
}

func (s *enrollmentService) decide(ctx context.Context, actor Actor, enrollmentID uint, to models.EnrollmentStatus) (dto.EnrollmentResponse, error) {
	operation := "approve"
	eventType := events.TypeApproved
	if to == models.EnrollmentStatusRejected {
		operation = "reject"
		eventType = events.TypeRejected
	}

	ctx, span := s.tracer.Start(ctx, "enrollment."+operation, trace.WithAttributes(
		attribute.Int("enrollment.id", int(enrollmentID)),
		attribute.Int("enrollment.actor_id", int(actor.ID)),
	))
	defer span.End()

	enrollment, err := s.transition(ctx, actor, enrollmentID, to)
	observeTransition(span, operation, err)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().
		Uint("enrollment_id", enrollment.ID).
		Uint("tutor_id", actor.ID).
		Str("status", string(enrollment.Status)).
		Msg("enrollment decided")
	s.emit(ctx, eventType, enrollment, nil)
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "enrollment." + operation,
		EntityType: "enrollment",
		EntityID:   uintPtr(enrollment.ID),
		Metadata:   map[string]interface{}{"student_id": enrollment.StudentID},
	})

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) transition(ctx context.Context, actor Actor, enrollmentID uint, to models.EnrollmentStatus) (models.Enrollment, error) {
	if err := actor.require(models.RoleTutor); err != nil {
		return models.Enrollment{}, err
	}

	current, err := s.load(ctx, enrollmentID)
	if err != nil {
		return models.Enrollment{}, err
	}
	if current.TutorID != actor.ID {
		return models.Enrollment{}, ErrUnauthorized
	}

	enrollment, err := s.enrollments.Transition(ctx, enrollmentID, models.EnrollmentStatusPending, to, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return models.Enrollment{}, ErrInvalidTransition
		case errors.Is(err, gorm.ErrRecordNotFound):
			return models.Enrollment{}, ErrEnrollmentNotFound
		default:
			return models.Enrollment{}, err
		}
	}
	return enrollment, nil
}

func (s *enrollmentService) RecordPayment(ctx context.Context, actor Actor, enrollmentID uint, req dto.PaymentCreateRequest) (dto.PaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.record_payment", trace.WithAttributes(
		attribute.Int("enrollment.id", int(enrollmentID)),
		attribute.String("payment.period", req.Period),
	))
	defer span.End()

	payment, enrollment, err := s.recordPayment(ctx, actor, enrollmentID, req)
	observeTransition(span, "record_payment", err)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	amount := payment.Amount
	s.emit(ctx, events.TypePaymentRecorded, enrollment, func(event *events.EnrollmentEvent) {
		event.Amount = &amount
		event.Period = payment.Period
	})
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "enrollment.payment",
		EntityType: "enrollment",
		EntityID:   uintPtr(enrollment.ID),
		Metadata: map[string]interface{}{
			"payment_id":        payment.ID,
			"amount":            payment.Amount,
			"period":            payment.Period,
			"commission_amount": payment.CommissionAmount,
		},
	})

	return dto.NewPaymentResponse(payment), nil
}

func (s *enrollmentService) recordPayment(ctx context.Context, actor Actor, enrollmentID uint, req dto.PaymentCreateRequest) (models.Payment, models.Enrollment, error) {
	if err := actor.require(models.RoleTutor); err != nil {
		return models.Payment{}, models.Enrollment{}, err
	}

	enrollment, err := s.load(ctx, enrollmentID)
	if err != nil {
		return models.Payment{}, models.Enrollment{}, err
	}
	if enrollment.TutorID != actor.ID {
		return models.Payment{}, models.Enrollment{}, ErrUnauthorized
	}
	if err := validateStruct(s.validator, req); err != nil {
		return models.Payment{}, models.Enrollment{}, err
	}
	amount := roundMoney(req.Amount)
	if amount <= 0 || amount > maxPaymentAmount || math.IsNaN(amount) {
		return models.Payment{}, models.Enrollment{}, invalidField("amount", "amount must be between 0.01 and 1000000000")
	}
	if !enrollment.IsApproved() {
		return models.Payment{}, models.Enrollment{}, ErrInvalidTransition
	}

	rate, err := s.rates.CommissionRate(ctx)
	if err != nil {
		return models.Payment{}, models.Enrollment{}, err
	}

	payment := models.Payment{
		EnrollmentID:     enrollment.ID,
		Amount:           amount,
		Period:           req.Period,
		CommissionRate:   rate,
		CommissionAmount: roundMoney(amount * rate),
		RecordedBy:       actor.ID,
		RecordedAt:       s.now(),
	}
	if err := s.enrollments.RecordPayment(ctx, &payment); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return models.Payment{}, models.Enrollment{}, ErrInvalidTransition
		}
		return models.Payment{}, models.Enrollment{}, err
	}

	return payment, enrollment, nil
}

func (s *enrollmentService) ListForTutor(ctx context.Context, actor Actor, status string) ([]dto.EnrollmentResponse, error) {
	if err := actor.require(models.RoleTutor); err != nil {
		return nil, err
	}

	filter := repository.EnrollmentFilter{TutorID: &actor.ID}
	if status != "" {
		parsed, ok := parseEnrollmentStatus(status)
		if !ok {
			return nil, invalidField("status", "status must be one of pending, approved, rejected")
		}
		filter.Status = parsed
	}

	enrollments, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) ListForStudent(ctx context.Context, actor Actor) ([]dto.EnrollmentResponse, error) {
	if err := actor.require(models.RoleStudent); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.List(ctx, repository.EnrollmentFilter{StudentID: &actor.ID})
	if err != nil {
		return nil, err
	}
	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) Get(ctx context.Context, actor Actor, enrollmentID uint) (dto.EnrollmentResponse, error) {
	enrollment, err := s.loadForParty(ctx, actor, enrollmentID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) ListPayments(ctx context.Context, actor Actor, enrollmentID uint) ([]dto.PaymentResponse, error) {
	enrollment, err := s.loadForParty(ctx, actor, enrollmentID)
	if err != nil {
		return nil, err
	}

	payments, err := s.enrollments.ListPayments(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponseSlice(payments), nil
}

func (s *enrollmentService) load(ctx context.Context, enrollmentID uint) (models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Enrollment{}, ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (s *enrollmentService) loadForParty(ctx context.Context, actor Actor, enrollmentID uint) (models.Enrollment, error) {
	if actor.ID == 0 {
		return models.Enrollment{}, ErrUnauthorized
	}
	enrollment, err := s.load(ctx, enrollmentID)
	if err != nil {
		return models.Enrollment{}, err
	}
	if !enrollment.IsParty(actor.ID) {
		return models.Enrollment{}, ErrUnauthorized
	}
	return enrollment, nil
}

func (s *enrollmentService) emit(ctx context.Context, eventType events.Type, enrollment models.Enrollment, decorate func(*events.EnrollmentEvent)) {
	if s.publisher == nil {
		return
	}

	event := events.EnrollmentEvent{
		Type:         eventType,
		EnrollmentID: enrollment.ID,
		StudentID:    enrollment.StudentID,
		TutorID:      enrollment.TutorID,
		Status:       string(enrollment.Status),
		OccurredAt:   s.now().UTC(),
	}
	if decorate != nil {
		decorate(&event)
	}
	s.publisher.Publish(ctx, event)
}

// observeTransition records the outcome of an enrollment state machine
// operation on the span and the transition counter.
func observeTransition(span trace.Span, operation string, err error) {
	result := "ok"
	if err != nil {
		result = errorLabel(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	observability.EnrollmentTransitions().WithLabelValues(operation, result).Inc()
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrDuplicateEnrollment):
		return "duplicate"
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
		return "account_exists"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrEnrollmentNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func parseEnrollmentStatus(value string) (models.EnrollmentStatus, bool) {
	switch status := models.EnrollmentStatus(value); status {
	case models.EnrollmentStatusPending, models.EnrollmentStatusApproved, models.EnrollmentStatusRejected:
		return status, true
	default:
		return "", false
	}
}

// maxPaymentAmount caps a single payment so platform totals stay finite.
const maxPaymentAmount = 1_000_000_000

func roundMoney(value float64) float64 {
	return math.Round(value*100) / 100
}
