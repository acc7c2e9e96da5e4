package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/events"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

// AuthService registers accounts and issues session tokens.
type AuthService interface {
	RegisterStudent(ctx context.Context, req dto.StudentRegisterRequest) (dto.StudentRegisterResponse, error)
	RegisterTutor(ctx context.Context, req dto.TutorRegisterRequest) (dto.AccountResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Me(ctx context.Context, actor Actor) (dto.AccountResponse, error)
}

type authService struct {
	accounts     repository.AccountRepository
	affiliations repository.AffiliationRepository
	publisher    EnrollmentEventPublisher
	activity     ActivityRecorder
	secret       []byte
	ttl          time.Duration
	validator    *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
	tracer       trace.Tracer
}

// NewAuthService constructs the authentication service.
func NewAuthService(
	accounts repository.AccountRepository,
	affiliations repository.AffiliationRepository,
	publisher EnrollmentEventPublisher,
	activity ActivityRecorder,
	secret string,
	ttl time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		accounts:     accounts,
		affiliations: affiliations,
		publisher:    publisher,
		activity:     activity,
		secret:       []byte(secret),
		ttl:          ttl,
		validator:    validate,
		logger:       logger.With().Str("component", "auth_service").Logger(),
		now:          time.Now,
		tracer:       otel.Tracer("github.com/cyber-Je-di/tuta-pamodzi/internal/service/auth"),
	}
}

// RegisterStudent creates the student and their first enrollment in one
// transaction. The enrollment is recorded the same way as one opened
// through EnrollmentService.Submit.
func (s *authService) RegisterStudent(ctx context.Context, req dto.StudentRegisterRequest) (dto.StudentRegisterResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.register_student", trace.WithAttributes(
		attribute.Int("enrollment.tutor_id", int(req.TutorID)),
	))
	defer span.End()

	account, enrollment, err := s.registerStudent(ctx, req)
	observeTransition(span, "submit", err)
	if err != nil {
		return dto.StudentRegisterResponse{}, err
	}

	s.logger.Info().Uint("account_id", account.ID).Str("email", maskEmailAddress(account.Email)).Uint("tutor_id", enrollment.TutorID).Msg("student registered")
	if s.publisher != nil {
		s.publisher.Publish(ctx, events.EnrollmentEvent{
			Type:         events.TypeSubmitted,
			EnrollmentID: enrollment.ID,
			StudentID:    account.ID,
			TutorID:      enrollment.TutorID,
			Status:       string(enrollment.Status),
		})
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      Actor{ID: account.ID, Role: models.RoleStudent},
		Action:     "enrollment.submit",
		EntityType: "enrollment",
		EntityID:   uintPtr(enrollment.ID),
		Metadata:   map[string]interface{}{"tutor_id": enrollment.TutorID, "source": "registration"},
	})

	return dto.StudentRegisterResponse{
		Account:    dto.NewAccountResponse(account),
		Enrollment: dto.NewEnrollmentResponse(enrollment),
	}, nil
}

func (s *authService) registerStudent(ctx context.Context, req dto.StudentRegisterRequest) (models.Account, models.Enrollment, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return models.Account{}, models.Enrollment{}, err
	}
	if err := s.checkUniqueness(ctx, req.Username, req.Email); err != nil {
		return models.Account{}, models.Enrollment{}, err
	}
	if err := s.checkUniversity(ctx, req.UniversityID); err != nil {
		return models.Account{}, models.Enrollment{}, err
	}

	tutor, err := s.accounts.GetByID(ctx, req.TutorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, models.Enrollment{}, err
	}
	if err != nil || !tutor.IsActiveTutor() {
		return models.Account{}, models.Enrollment{}, invalidField("tutor_id", "tutor_id must reference an approved tutor")
	}

	account, err := newAccount(models.RoleStudent, req.Username, req.Email, req.FullName, req.Password, req.UniversityID)
	if err != nil {
		return models.Account{}, models.Enrollment{}, err
	}

	enrollment, err := s.accounts.CreateStudentWithEnrollment(ctx, &account, tutor.ID)
	if err != nil {
		return models.Account{}, models.Enrollment{}, s.mapCreateError(ctx, err, req.Username)
	}
	enrollment.Tutor = &tutor
	enrollment.Student = &account

	return account, enrollment, nil
}

func (s *authService) RegisterTutor(ctx context.Context, req dto.TutorRegisterRequest) (dto.AccountResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return dto.AccountResponse{}, err
	}
	if err := s.checkUniqueness(ctx, req.Username, req.Email); err != nil {
		return dto.AccountResponse{}, err
	}
	if err := s.checkUniversity(ctx, req.UniversityID); err != nil {
		return dto.AccountResponse{}, err
	}

	account, err := newAccount(models.RoleTutor, req.Username, req.Email, req.FullName, req.Password, req.UniversityID)
	if err != nil {
		return dto.AccountResponse{}, err
	}
	account.TutorStatus = models.TutorStatusPending

	if err := s.accounts.Create(ctx, &account); err != nil {
		return dto.AccountResponse{}, s.mapCreateError(ctx, err, req.Username)
	}

	s.logger.Info().Uint("account_id", account.ID).Str("email", maskEmailAddress(account.Email)).Msg("tutor registered, awaiting approval")
	return dto.NewAccountResponse(account), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return dto.LoginResponse{}, err
	}

	account, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}
	if !account.CheckPassword(req.Password) {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}
	if account.Role == models.RoleTutor && account.TutorStatus != models.TutorStatusApproved {
		return dto.LoginResponse{}, ErrAccountPendingApproval
	}

	token, expiresAt, err := s.issueToken(account)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	return dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   dto.NewAccountResponse(account),
	}, nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (dto.AccountResponse, error) {
	if actor.ID == 0 {
		return dto.AccountResponse{}, ErrUnauthorized
	}
	account, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}
	return dto.NewAccountResponse(account), nil
}

func (s *authService) issueToken(account models.Account) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(account.ID), 10),
		"role": account.Role.String(),
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *authService) checkUniqueness(ctx context.Context, username, email string) error {
	taken, err := s.accounts.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	taken, err = s.accounts.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func (s *authService) checkUniversity(ctx context.Context, universityID uint) error {
	if _, err := s.affiliations.GetUniversity(ctx, universityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidField("university_id", "university_id must reference an existing university")
		}
		return err
	}
	return nil
}

// mapCreateError resolves a unique violation raced past checkUniqueness.
func (s *authService) mapCreateError(ctx context.Context, err error, username string) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if taken, lookupErr := s.accounts.UsernameExists(ctx, username); lookupErr == nil && taken {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

func newAccount(role models.Role, username, email, fullName, password string, universityID uint) (models.Account, error) {
	account := models.Account{
		Role:     role,
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		FullName: strings.TrimSpace(fullName),
	}
	if universityID != 0 {
		account.UniversityID = uintPtr(universityID)
	}
	if err := account.SetPassword(password); err != nil {
		return models.Account{}, err
	}
	return account, nil
}
