package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/config"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

func (e *testEnv) document(t *testing.T, tutor models.Account, course models.Course) models.Document {
	t.Helper()
	document := models.Document{
		TutorID:     tutor.ID,
		CourseID:    course.ID,
		Title:       "Limits",
		FileName:    "limits.pdf",
		StoragePath: "/tmp/limits.pdf",
		MimeType:    "application/pdf",
		SizeBytes:   10,
	}
	require.NoError(t, e.documents.Create(context.Background(), &document))
	loaded, err := e.documents.GetByID(context.Background(), document.ID)
	require.NoError(t, err)
	return loaded
}

func TestAccessGateChecksInOrder(t *testing.T) {
	env := newTestEnv(t)
	gate := NewAccessGate(env.enrollments, config.PeriodPolicyAny)
	ctx := context.Background()
	document := env.document(t, env.tutor, env.course)

	decision, err := gate.CanView(ctx, env.student, document)
	require.NoError(t, err)
	require.Equal(t, AccessDecision{Reason: AccessNoEnrollment}, decision)

	enrollment := env.enroll(t, env.student, env.tutor, models.EnrollmentStatusPending)
	decision, err = gate.CanView(ctx, env.student, document)
	require.NoError(t, err)
	require.Equal(t, AccessNotApproved, decision.Reason)

	enrollment, err = env.enrollments.Transition(ctx, enrollment.ID, models.EnrollmentStatusPending, models.EnrollmentStatusApproved, time.Now())
	require.NoError(t, err)
	decision, err = gate.CanView(ctx, env.student, document)
	require.NoError(t, err)
	require.Equal(t, AccessUnpaid, decision.Reason)

	env.pay(t, enrollment, "2020-01")
	decision, err = gate.CanView(ctx, env.student, document)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.Equal(t, AccessAllowed, decision.Reason)
}

func TestAccessGateCurrentPeriodPolicy(t *testing.T) {
	env := newTestEnv(t)
	gate := NewAccessGate(env.enrollments, config.PeriodPolicyCurrent).(*accessGate)
	gate.now = func() time.Time { return time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	document := env.document(t, env.tutor, env.course)
	enrollment := env.enroll(t, env.student, env.tutor, models.EnrollmentStatusApproved)

	env.pay(t, enrollment, "2026-09")
	decision, err := gate.CanView(ctx, env.student, document)
	require.NoError(t, err)
	require.Equal(t, AccessUnpaid, decision.Reason)

	env.pay(t, enrollment, "2026-10")
	decision, err = gate.CanView(ctx, env.student, document)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestAccessGateAffiliationMismatch(t *testing.T) {
	env := newTestEnv(t)
	gate := NewAccessGate(env.enrollments, config.PeriodPolicyAny)
	ctx := context.Background()

	other := models.University{Name: "CBU"}
	require.NoError(t, env.db.Create(&other).Error)
	category := models.Category{Name: "Mining", UniversityID: other.ID}
	require.NoError(t, env.db.Create(&category).Error)
	course := models.Course{Name: "Geology", Code: "GEO1010", CategoryID: category.ID}
	require.NoError(t, env.db.Create(&course).Error)

	document := env.document(t, env.tutor, course)
	enrollment := env.enroll(t, env.student, env.tutor, models.EnrollmentStatusApproved)
	env.pay(t, enrollment, "2026-10")

	decision, err := gate.CanView(ctx, env.student, document)
	require.NoError(t, err)
	require.Equal(t, AccessAffiliationMismatch, decision.Reason)

	unaffiliated := env.student
	unaffiliated.UniversityID = nil
	decision, err = gate.CanView(ctx, unaffiliated, env.document(t, env.tutor, env.course))
	require.NoError(t, err)
	require.Equal(t, AccessAffiliationMismatch, decision.Reason)
}

func TestAccessGateUnlocksMatchesCanView(t *testing.T) {
	env := newTestEnv(t)
	gate := NewAccessGate(env.enrollments, config.PeriodPolicyAny)
	ctx := context.Background()
	document := env.document(t, env.tutor, env.course)

	enrollment := env.enroll(t, env.student, env.tutor, models.EnrollmentStatusApproved)
	loaded, err := env.enrollments.GetByID(ctx, enrollment.ID)
	require.NoError(t, err)

	decision, err := gate.Unlocks(ctx, env.student, loaded)
	require.NoError(t, err)
	require.Equal(t, AccessUnpaid, decision.Reason)

	env.pay(t, loaded, "2026-10")
	decision, err = gate.Unlocks(ctx, env.student, loaded)
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	stranger := env.student
	stranger.UniversityID = nil
	decision, err = gate.Unlocks(ctx, stranger, loaded)
	require.NoError(t, err)
	require.Equal(t, AccessAffiliationMismatch, decision.Reason)

	viewed, err := gate.CanView(ctx, stranger, document)
	require.NoError(t, err)
	require.Equal(t, decision, viewed)
}
