package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/database"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

type fixture struct {
	university models.University
	course     models.Course
	student    models.Account
	tutor      models.Account
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	university := models.University{Name: "UNZA"}
	require.NoError(t, db.Create(&university).Error)
	category := models.Category{Name: "Engineering", UniversityID: university.ID}
	require.NoError(t, db.Create(&category).Error)
	course := models.Course{Name: "Calculus", Code: "MAT1100", CategoryID: category.ID}
	require.NoError(t, db.Create(&course).Error)

	student := models.Account{Role: models.RoleStudent, Username: "alice", Email: "alice@example.com", FullName: "Alice Banda", PasswordHash: "x", UniversityID: &university.ID}
	tutor := models.Account{Role: models.RoleTutor, Username: "bobby", Email: "bob@example.com", FullName: "Bob Phiri", PasswordHash: "x", UniversityID: &university.ID, TutorStatus: models.TutorStatusApproved}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&tutor).Error)

	return fixture{university: university, course: course, student: student, tutor: tutor}
}

func TestEnrollmentTransitionIsCompareAndSwap(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixture(t, db)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	enrollment := models.Enrollment{StudentID: fx.student.ID, TutorID: fx.tutor.ID, Status: models.EnrollmentStatusPending}
	require.NoError(t, repo.Create(ctx, &enrollment))

	approved, err := repo.Transition(ctx, enrollment.ID, models.EnrollmentStatusPending, models.EnrollmentStatusApproved, time.Now())
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedAt)
	require.NotNil(t, approved.Tutor)

	current, err := repo.Transition(ctx, enrollment.ID, models.EnrollmentStatusPending, models.EnrollmentStatusRejected, time.Now())
	require.ErrorIs(t, err, ErrStatusConflict)
	require.Equal(t, models.EnrollmentStatusApproved, current.Status)

	_, err = repo.Transition(ctx, 9999, models.EnrollmentStatusPending, models.EnrollmentStatusApproved, time.Now())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEnrollmentPairIsUnique(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixture(t, db)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Enrollment{StudentID: fx.student.ID, TutorID: fx.tutor.ID, Status: models.EnrollmentStatusPending}))
	err := repo.Create(ctx, &models.Enrollment{StudentID: fx.student.ID, TutorID: fx.tutor.ID, Status: models.EnrollmentStatusPending})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRecordPaymentRequiresApproval(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixture(t, db)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	enrollment := models.Enrollment{StudentID: fx.student.ID, TutorID: fx.tutor.ID, Status: models.EnrollmentStatusPending}
	require.NoError(t, repo.Create(ctx, &enrollment))

	payment := models.Payment{EnrollmentID: enrollment.ID, Amount: 50, Period: "2024-01", RecordedBy: fx.tutor.ID, RecordedAt: time.Now()}
	require.ErrorIs(t, repo.RecordPayment(ctx, &payment), ErrStatusConflict)

	_, err := repo.Transition(ctx, enrollment.ID, models.EnrollmentStatusPending, models.EnrollmentStatusApproved, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.RecordPayment(ctx, &payment))
	require.NotZero(t, payment.ID)

	paid, err := repo.HasPayment(ctx, enrollment.ID, "")
	require.NoError(t, err)
	require.True(t, paid)

	paidFeb, err := repo.HasPayment(ctx, enrollment.ID, "2024-02")
	require.NoError(t, err)
	require.False(t, paidFeb)
}

func TestPaymentTotalsFiltersByTutorAndDate(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixture(t, db)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	enrollment := models.Enrollment{StudentID: fx.student.ID, TutorID: fx.tutor.ID, Status: models.EnrollmentStatusApproved}
	require.NoError(t, repo.Create(ctx, &enrollment))

	now := time.Now()
	old := models.Payment{EnrollmentID: enrollment.ID, Amount: 100, Period: "2024-01", CommissionRate: 0.1, CommissionAmount: 10, RecordedBy: fx.tutor.ID, RecordedAt: now.AddDate(0, -2, 0)}
	recent := models.Payment{EnrollmentID: enrollment.ID, Amount: 50, Period: "2024-03", CommissionRate: 0.1, CommissionAmount: 5, RecordedBy: fx.tutor.ID, RecordedAt: now}
	require.NoError(t, repo.RecordPayment(ctx, &old))
	require.NoError(t, repo.RecordPayment(ctx, &recent))

	all, err := repo.PaymentTotals(ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), all.Count)
	require.InDelta(t, 150, all.Amount, 0.001)

	since := now.AddDate(0, 0, -1)
	tutorID := fx.tutor.ID
	monthly, err := repo.PaymentTotals(ctx, &tutorID, &since)
	require.NoError(t, err)
	require.Equal(t, int64(1), monthly.Count)
	require.InDelta(t, 5, monthly.Commission, 0.001)

	counts, err := repo.CountByStatus(ctx, &tutorID)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts[models.EnrollmentStatusApproved])
	require.Equal(t, int64(1), counts.Total())
}

func TestDeleteUniversityRefusedWhileReferenced(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixture(t, db)
	repo := NewAffiliationRepository(db)
	ctx := context.Background()

	require.ErrorIs(t, repo.DeleteUniversity(ctx, fx.university.ID), ErrInUse)
	require.ErrorIs(t, repo.DeleteCourse(ctx, 9999), gorm.ErrRecordNotFound)

	empty := models.University{Name: "CBU"}
	require.NoError(t, repo.CreateUniversity(ctx, &empty))
	require.NoError(t, repo.DeleteUniversity(ctx, empty.ID))
}

func TestTutorStatusTransition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	tutor := models.Account{Role: models.RoleTutor, Username: "pending", Email: "p@example.com", FullName: "Pending Tutor", PasswordHash: "x", TutorStatus: models.TutorStatusPending}
	require.NoError(t, repo.Create(ctx, &tutor))

	updated, err := repo.TransitionTutorStatus(ctx, tutor.ID, models.TutorStatusPending, models.TutorStatusApproved)
	require.NoError(t, err)
	require.Equal(t, models.TutorStatusApproved, updated.TutorStatus)

	_, err = repo.TransitionTutorStatus(ctx, tutor.ID, models.TutorStatusPending, models.TutorStatusRejected)
	require.ErrorIs(t, err, ErrStatusConflict)

	approved, err := repo.ListTutors(ctx, models.TutorStatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
}

func TestReviewRankingOrdersByAverageThenCount(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixture(t, db)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	second := models.Account{Role: models.RoleTutor, Username: "carol", Email: "carol@example.com", FullName: "Carol Mwale", PasswordHash: "x", TutorStatus: models.TutorStatusApproved}
	require.NoError(t, db.Create(&second).Error)
	hidden := models.Account{Role: models.RoleTutor, Username: "dave", Email: "dave@example.com", FullName: "Dave Zulu", PasswordHash: "x", TutorStatus: models.TutorStatusPending}
	require.NoError(t, db.Create(&hidden).Error)

	require.NoError(t, repo.Create(ctx, &models.Review{StudentID: fx.student.ID, TutorID: fx.tutor.ID, Rating: 3, ContentClearScore: 3, TutorResponsiveScore: 3}))
	require.NoError(t, repo.Create(ctx, &models.Review{StudentID: fx.student.ID, TutorID: second.ID, Rating: 5, ContentClearScore: 4, TutorResponsiveScore: 5}))

	err := repo.Create(ctx, &models.Review{StudentID: fx.student.ID, TutorID: second.ID, Rating: 1, ContentClearScore: 1, TutorResponsiveScore: 1})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	rows, err := repo.Ranking(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, second.ID, rows[0].TutorID)
	require.InDelta(t, 5, rows[0].AverageRating, 0.001)
	require.Equal(t, int64(1), rows[1].ReviewCount)

	aggregate, err := repo.Aggregate(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), aggregate.Count)
	require.InDelta(t, 4, aggregate.AverageContentClear, 0.001)

	reviewed, err := repo.ReviewedTutorIDs(ctx, fx.student.ID)
	require.NoError(t, err)
	require.True(t, reviewed[fx.tutor.ID])
	require.False(t, reviewed[hidden.ID])
}

func TestDocumentsListedByUniversity(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixture(t, db)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	document := models.Document{TutorID: fx.tutor.ID, CourseID: fx.course.ID, Title: "Limits", FileName: "limits.pdf", StoragePath: "uploads/limits.pdf", MimeType: "application/pdf", SizeBytes: 10}
	require.NoError(t, repo.Create(ctx, &document))

	documents, err := repo.ListByUniversity(ctx, fx.university.ID)
	require.NoError(t, err)
	require.Len(t, documents, 1)

	universityID, ok := documents[0].UniversityID()
	require.True(t, ok)
	require.Equal(t, fx.university.ID, universityID)

	none, err := repo.ListByUniversity(ctx, fx.university.ID+1)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestActivityLogListPaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 1, ActorRole: "tutor", Action: "enrollment.approve", EntityType: "enrollment"}))
	}
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 2, ActorRole: "admin", Action: "settings.update", EntityType: "settings"}))

	entries, total, err := repo.List(ctx, ActivityLogFilter{Action: "enrollment.approve", Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
}
