package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/config"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/observability"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

// Access gate outcomes, also used as metric labels.
const (
	AccessAllowed             = "allowed"
	AccessNoEnrollment        = "no_enrollment"
	AccessNotApproved         = "not_approved"
	AccessUnpaid              = "unpaid"
	AccessAffiliationMismatch = "affiliation_mismatch"
)

// AccessDecision is the outcome of evaluating a student against a document.
type AccessDecision struct {
	Allowed bool
	Reason  string
}

// AccessGate decides whether a student may view a document. Decisions are
// evaluated fresh on every call.
type AccessGate interface {
	CanView(ctx context.Context, student models.Account, document models.Document) (AccessDecision, error)
	Unlocks(ctx context.Context, student models.Account, enrollment models.Enrollment) (AccessDecision, error)
}

type accessGate struct {
	enrollments repository.EnrollmentRepository
	policy      string
	now         func() time.Time
}

// NewAccessGate constructs the gate with the configured payment period policy.
func NewAccessGate(enrollments repository.EnrollmentRepository, policy string) AccessGate {
	if policy != config.PeriodPolicyCurrent {
		policy = config.PeriodPolicyAny
	}
	return &accessGate{enrollments: enrollments, policy: policy, now: time.Now}
}

// CanView checks, in order: an approved enrollment with the document's tutor, a
// qualifying payment, then a matching university.
func (g *accessGate) CanView(ctx context.Context, student models.Account, document models.Document) (AccessDecision, error) {
	decision, err := g.evaluate(ctx, student, document)
	if err != nil {
		return AccessDecision{}, err
	}
	observability.AccessDecisions().WithLabelValues(decision.Reason).Inc()
	return decision, nil
}

func (g *accessGate) evaluate(ctx context.Context, student models.Account, document models.Document) (AccessDecision, error) {
	enrollment, err := g.enrollments.FindByPair(ctx, student.ID, document.TutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return deny(AccessNoEnrollment), nil
		}
		return AccessDecision{}, err
	}

	decision, err := g.standing(ctx, enrollment)
	if err != nil || !decision.Allowed {
		return decision, err
	}

	documentUniversity, ok := document.UniversityID()
	if !ok || !sameUniversity(student.UniversityID, &documentUniversity) {
		return deny(AccessAffiliationMismatch), nil
	}
	return decision, nil
}

// Unlocks reports whether the enrollment opens its tutor's documents to the
// student. It runs the CanView checks with the tutor's university standing in
// for the document's, since affiliated tutors only publish to their own
// university. An unaffiliated tutor publishes anywhere, so only the student's
// affiliation is required then.
func (g *accessGate) Unlocks(ctx context.Context, student models.Account, enrollment models.Enrollment) (AccessDecision, error) {
	decision, err := g.standing(ctx, enrollment)
	if err != nil || !decision.Allowed {
		return decision, err
	}
	if student.UniversityID == nil || enrollment.Tutor == nil {
		return deny(AccessAffiliationMismatch), nil
	}
	if enrollment.Tutor.UniversityID != nil && !sameUniversity(student.UniversityID, enrollment.Tutor.UniversityID) {
		return deny(AccessAffiliationMismatch), nil
	}
	return decision, nil
}

// standing covers the enrollment status and payment checks.
func (g *accessGate) standing(ctx context.Context, enrollment models.Enrollment) (AccessDecision, error) {
	if !enrollment.IsApproved() {
		return deny(AccessNotApproved), nil
	}

	period := ""
	if g.policy == config.PeriodPolicyCurrent {
		period = models.PeriodOf(g.now())
	}
	paid, err := g.enrollments.HasPayment(ctx, enrollment.ID, period)
	if err != nil {
		return AccessDecision{}, err
	}
	if !paid {
		return deny(AccessUnpaid), nil
	}
	return AccessDecision{Allowed: true, Reason: AccessAllowed}, nil
}

func sameUniversity(a, b *uint) bool {
	return a != nil && b != nil && *a == *b
}

func deny(reason string) AccessDecision {
	return AccessDecision{Allowed: false, Reason: reason}
}
