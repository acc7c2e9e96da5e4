package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/config"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

func TestAffiliationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAffiliationService(env.affiliations, env.activityService(), env.validate, testLogger())
	ctx := context.Background()

	_, err := svc.CreateUniversity(ctx, tutorActor(env.tutor), dto.UniversityCreateRequest{Name: "CBU"})
	require.ErrorIs(t, err, ErrUnauthorized)

	university, err := svc.CreateUniversity(ctx, adminActor, dto.UniversityCreateRequest{Name: " CBU "})
	require.NoError(t, err)
	require.Equal(t, "CBU", university.Name)

	_, err = svc.CreateUniversity(ctx, adminActor, dto.UniversityCreateRequest{Name: "CBU"})
	require.ErrorIs(t, err, ErrDuplicateAffiliation)

	category, err := svc.CreateCategory(ctx, adminActor, university.ID, dto.CategoryCreateRequest{Name: "Mining"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, adminActor, 4242, dto.CategoryCreateRequest{Name: "Mining"})
	require.ErrorIs(t, err, ErrUniversityNotFound)

	course, err := svc.CreateCourse(ctx, adminActor, category.ID, dto.CourseCreateRequest{Name: "Geology", Code: "geo1010"})
	require.NoError(t, err)
	require.Equal(t, "GEO1010", course.Code)

	courses, err := svc.ListCourses(ctx, category.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)

	require.ErrorIs(t, svc.DeleteUniversity(ctx, adminActor, university.ID), ErrAffiliationInUse)
	require.NoError(t, svc.DeleteCourse(ctx, adminActor, course.ID))
	require.NoError(t, svc.DeleteCategory(ctx, adminActor, category.ID))
	require.NoError(t, svc.DeleteUniversity(ctx, adminActor, university.ID))
	require.ErrorIs(t, svc.DeleteUniversity(ctx, adminActor, university.ID), ErrUniversityNotFound)

	logs, _, err := env.activity.List(ctx, repository.ActivityLogFilter{Action: "affiliation.create"})
	require.NoError(t, err)
	require.Len(t, logs, 3)
}

func TestSettingsUpdateStoresFraction(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSettingsService(env.settings, 0.1, env.activityService(), env.validate, testLogger())
	ctx := context.Background()

	rate, err := svc.CommissionRate(ctx)
	require.NoError(t, err)
	require.Equal(t, 0.1, rate)

	_, err = svc.Get(ctx, adminActor)
	require.ErrorIs(t, err, ErrSettingsNotFound)

	_, _, err = env.settings.EnsureDefault(ctx, 0.1)
	require.NoError(t, err)

	percent := 12.5
	_, err = svc.Update(ctx, tutorActor(env.tutor), dto.SettingsUpdateRequest{CommissionRatePercent: &percent})
	require.ErrorIs(t, err, ErrUnauthorized)

	tooHigh := 101.0
	_, err = svc.Update(ctx, adminActor, dto.SettingsUpdateRequest{CommissionRatePercent: &tooHigh})
	require.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.Update(ctx, adminActor, dto.SettingsUpdateRequest{CommissionRatePercent: &percent})
	require.NoError(t, err)
	require.Equal(t, 0.125, updated.CommissionRate)
	require.Equal(t, 12.5, updated.CommissionRatePercent)

	rate, err = svc.CommissionRate(ctx)
	require.NoError(t, err)
	require.Equal(t, 0.125, rate)
}

func TestDashboards(t *testing.T) {
	env := newTestEnv(t)
	settings := NewSettingsService(env.settings, 0.1, nil, env.validate, testLogger())
	svc := NewDashboardService(env.enrollments, env.reviews, env.stats, settings, NewAccessGate(env.enrollments, config.PeriodPolicyAny), testLogger())
	ctx := context.Background()

	second := env.createAccount(t, models.RoleStudent, "carol", "")
	approved := env.enroll(t, env.student, env.tutor, models.EnrollmentStatusApproved)
	env.enroll(t, second, env.tutor, models.EnrollmentStatusPending)
	env.pay(t, approved, models.PeriodOf(approved.CreatedAt))
	require.NoError(t, env.reviews.Create(ctx, &models.Review{
		StudentID:            env.student.ID,
		TutorID:              env.tutor.ID,
		Rating:               4,
		ContentClearScore:    5,
		TutorResponsiveScore: 3,
	}))

	_, err := svc.Tutor(ctx, studentActor(env.student))
	require.ErrorIs(t, err, ErrUnauthorized)

	tutor, err := svc.Tutor(ctx, tutorActor(env.tutor))
	require.NoError(t, err)
	require.Equal(t, int64(2), tutor.Students.Total)
	require.Equal(t, int64(1), tutor.Students.Pending)
	require.Equal(t, int64(1), tutor.Students.Approved)
	require.Equal(t, 100.0, tutor.Revenue.Total)
	require.Equal(t, 10.0, tutor.Revenue.CommissionOwed)
	require.Equal(t, 90.0, tutor.Revenue.NetEarnings)
	require.Equal(t, int64(1), tutor.Reviews.Count)
	require.Equal(t, 4.0, tutor.Reviews.AverageRating)
	require.Len(t, tutor.LatestReviews, 1)

	student, err := svc.Student(ctx, studentActor(env.student))
	require.NoError(t, err)
	require.Len(t, student.Enrollments, 1)
	require.True(t, student.Enrollments[0].Paid)
	require.True(t, student.Enrollments[0].ContentUnlocked)
	require.True(t, student.Enrollments[0].Reviewed)

	pendingStudent, err := svc.Student(ctx, studentActor(second))
	require.NoError(t, err)
	require.False(t, pendingStudent.Enrollments[0].ContentUnlocked)

	admin, err := svc.Admin(ctx, adminActor)
	require.NoError(t, err)
	require.Equal(t, int64(2), admin.Students)
	require.Equal(t, int64(1), admin.Tutors.Approved)
	require.Equal(t, int64(1), admin.Universities)
	require.Equal(t, int64(2), admin.Enrollments.Total)
	require.Equal(t, 100.0, admin.PaymentsTotal)
	require.Equal(t, 10.0, admin.CommissionTotal)
	require.Equal(t, 10.0, admin.CommissionRatePercent)
}

func TestStudentDashboardRequiresAffiliationToUnlock(t *testing.T) {
	env := newTestEnv(t)
	settings := NewSettingsService(env.settings, 0.1, nil, env.validate, testLogger())
	svc := NewDashboardService(env.enrollments, env.reviews, env.stats, settings, NewAccessGate(env.enrollments, config.PeriodPolicyAny), testLogger())
	ctx := context.Background()

	approved := env.enroll(t, env.student, env.tutor, models.EnrollmentStatusApproved)
	env.pay(t, approved, "2026-10")

	other := models.University{Name: "MU"}
	require.NoError(t, env.db.Create(&other).Error)
	require.NoError(t, env.db.Model(&models.Account{}).Where("id = ?", env.student.ID).Update("university_id", other.ID).Error)

	dashboard, err := svc.Student(ctx, studentActor(env.student))
	require.NoError(t, err)
	require.Len(t, dashboard.Enrollments, 1)
	require.True(t, dashboard.Enrollments[0].Paid)
	require.False(t, dashboard.Enrollments[0].ContentUnlocked)

	require.NoError(t, env.db.Model(&models.Account{}).Where("id = ?", env.student.ID).Update("university_id", nil).Error)
	dashboard, err = svc.Student(ctx, studentActor(env.student))
	require.NoError(t, err)
	require.False(t, dashboard.Enrollments[0].ContentUnlocked)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	admin := AdminCredentials{
		Username: "admin",
		Email:    "admin@highexecellenceacademy.com",
		FullName: "Lead Administrator",
		Password: "changeme",
	}
	svc := NewBootstrapService(env.settings, env.affiliations, env.accounts, 0.1, admin, env.validate, testLogger())
	ctx := context.Background()

	report, err := svc.Run(ctx)
	require.NoError(t, err)
	require.True(t, report.SettingsCreated)
	require.True(t, report.AdminCreated)
	require.ElementsMatch(t, []string{"CBU", "MU", "ZICAS", "Cavendish"}, report.UniversitiesCreated)

	report, err = svc.Run(ctx)
	require.NoError(t, err)
	require.False(t, report.SettingsCreated)
	require.False(t, report.AdminCreated)
	require.Empty(t, report.UniversitiesCreated)

	account, err := env.accounts.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, account.Role)
	require.True(t, account.CheckPassword("changeme"))

	require.ErrorIs(t, svc.ResetPassword(ctx, "admin", "abc"), ErrInvalidInput)
	require.ErrorIs(t, svc.ResetPassword(ctx, "ghost", "newpassword"), ErrAccountNotFound)
	require.NoError(t, svc.ResetPassword(ctx, "admin", "newpassword"))

	account, err = env.accounts.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.True(t, account.CheckPassword("newpassword"))

	_, err = svc.CreateAdmin(ctx, admin)
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestBootstrapSkipsAdminWithoutPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := NewBootstrapService(env.settings, env.affiliations, env.accounts, 0.1, AdminCredentials{Username: "admin"}, env.validate, testLogger())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.False(t, report.AdminCreated)
}
