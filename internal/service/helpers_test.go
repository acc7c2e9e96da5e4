package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/database"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/events"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/validation"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.EnrollmentEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.EnrollmentEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.Type, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}

type staticRate float64

func (r staticRate) CommissionRate(ctx context.Context) (float64, error) {
	return float64(r), nil
}

type testEnv struct {
	db           *gorm.DB
	validate     *validator.Validate
	accounts     repository.AccountRepository
	affiliations repository.AffiliationRepository
	enrollments  repository.EnrollmentRepository
	documents    repository.DocumentRepository
	reviews      repository.ReviewRepository
	settings     repository.SettingRepository
	activity     repository.ActivityLogRepository
	stats        repository.PlatformStatsRepository

	university models.University
	category   models.Category
	course     models.Course
	student    models.Account
	tutor      models.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.ConnectSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		db:           db,
		validate:     validation.New(),
		accounts:     repository.NewAccountRepository(db),
		affiliations: repository.NewAffiliationRepository(db),
		enrollments:  repository.NewEnrollmentRepository(db),
		documents:    repository.NewDocumentRepository(db),
		reviews:      repository.NewReviewRepository(db),
		settings:     repository.NewSettingRepository(db),
		activity:     repository.NewActivityLogRepository(db),
		stats:        repository.NewPlatformStatsRepository(db),
	}

	env.university = models.University{Name: "UNZA"}
	require.NoError(t, db.Create(&env.university).Error)
	env.category = models.Category{Name: "Engineering", UniversityID: env.university.ID}
	require.NoError(t, db.Create(&env.category).Error)
	env.course = models.Course{Name: "Calculus", Code: "MAT1100", CategoryID: env.category.ID}
	require.NoError(t, db.Create(&env.course).Error)

	env.student = env.createAccount(t, models.RoleStudent, "alice", "")
	env.tutor = env.createAccount(t, models.RoleTutor, "bobby", models.TutorStatusApproved)
	return env
}

func (e *testEnv) createAccount(t *testing.T, role models.Role, username string, status models.TutorStatus) models.Account {
	t.Helper()
	account := models.Account{
		Role:         role,
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username + " test",
		PasswordHash: "x",
		UniversityID: &e.university.ID,
		TutorStatus:  status,
	}
	require.NoError(t, e.db.Create(&account).Error)
	return account
}

func (e *testEnv) enroll(t *testing.T, student, tutor models.Account, status models.EnrollmentStatus) models.Enrollment {
	t.Helper()
	enrollment := models.Enrollment{StudentID: student.ID, TutorID: tutor.ID, Status: models.EnrollmentStatusPending}
	require.NoError(t, e.enrollments.Create(context.Background(), &enrollment))
	if status == models.EnrollmentStatusPending {
		return enrollment
	}
	updated, err := e.enrollments.Transition(context.Background(), enrollment.ID, models.EnrollmentStatusPending, status, time.Now())
	require.NoError(t, err)
	return updated
}

func (e *testEnv) pay(t *testing.T, enrollment models.Enrollment, period string) {
	t.Helper()
	payment := models.Payment{
		EnrollmentID:     enrollment.ID,
		Amount:           100,
		Period:           period,
		CommissionRate:   0.1,
		CommissionAmount: 10,
		RecordedBy:       enrollment.TutorID,
		RecordedAt:       time.Now(),
	}
	require.NoError(t, e.enrollments.RecordPayment(context.Background(), &payment))
}

func (e *testEnv) activityService() ActivityService {
	return NewActivityService(e.activity, testLogger())
}

func studentActor(account models.Account) Actor {
	return Actor{ID: account.ID, Role: models.RoleStudent}
}

func tutorActor(account models.Account) Actor {
	return Actor{ID: account.ID, Role: models.RoleTutor}
}

var adminActor = Actor{ID: 999, Role: models.RoleAdmin}
