package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	TutorID   *uint
	StudentID *uint
	Status    models.EnrollmentStatus
}

// StatusCounts tallies enrollments per status.
type StatusCounts map[models.EnrollmentStatus]int64

// Total sums every status bucket.
func (c StatusCounts) Total() int64 {
	var total int64
	for _, count := range c {
		total += count
	}
	return total
}

// PaymentTotals aggregates recorded payments.
type PaymentTotals struct {
	Count      int64
	Amount     float64
	Commission float64
}

// EnrollmentRepository persists enrollments and their payment ledger.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id uint) (models.Enrollment, error)
	FindByPair(ctx context.Context, studentID, tutorID uint) (models.Enrollment, error)
	List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, error)
	Transition(ctx context.Context, id uint, from, to models.EnrollmentStatus, at time.Time) (models.Enrollment, error)
	RecordPayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, enrollmentID uint) ([]models.Payment, error)
	HasPayment(ctx context.Context, enrollmentID uint, period string) (bool, error)
	CountByStatus(ctx context.Context, tutorID *uint) (StatusCounts, error)
	PaymentTotals(ctx context.Context, tutorID *uint, since *time.Time) (PaymentTotals, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Tutor").
		First(&enrollment, id).Error
	if err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) FindByPair(ctx context.Context, studentID, tutorID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND tutor_id = ?", studentID, tutorID).
		First(&enrollment).Error
	if err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).Preload("Student").Preload("Tutor")

	if filter.TutorID != nil {
		query = query.Where("tutor_id = ?", *filter.TutorID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var enrollments []models.Enrollment
	if err := query.Order("created_at ASC").Order("id ASC").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Transition moves an enrollment from one status to another with a
// compare-and-swap on the status column. When the row is not in the expected
// state the current row is returned together with ErrStatusConflict.
func (r *enrollmentRepository) Transition(ctx context.Context, id uint, from, to models.EnrollmentStatus, at time.Time) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Enrollment{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{
				"status":     to,
				"decided_at": at,
				"updated_at": at,
			})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Preload("Student").Preload("Tutor").First(&enrollment, id).Error; err != nil {
			return err
		}
		if result.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return nil
	})
	return enrollment, err
}

// RecordPayment appends a payment after re-reading the enrollment under a row
// lock and confirming it is approved, all in one transaction.
func (r *enrollmentRepository) RecordPayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&enrollment, payment.EnrollmentID).Error
		if err != nil {
			return err
		}
		if enrollment.Status != models.EnrollmentStatusApproved {
			return ErrStatusConflict
		}

		return tx.Create(payment).Error
	})
}

func (r *enrollmentRepository) ListPayments(ctx context.Context, enrollmentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("recorded_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// HasPayment reports whether the enrollment has a payment, restricted to the
// given period when one is supplied.
func (r *enrollmentRepository) HasPayment(ctx context.Context, enrollmentID uint, period string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("enrollment_id = ?", enrollmentID)
	if period != "" {
		query = query.Where("period = ?", period)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *enrollmentRepository) CountByStatus(ctx context.Context, tutorID *uint) (StatusCounts, error) {
	type row struct {
		Status models.EnrollmentStatus
		Total  int64
	}

	query := r.db.WithContext(ctx).Model(&models.Enrollment{}).Select("status, COUNT(*) AS total")
	if tutorID != nil {
		query = query.Where("tutor_id = ?", *tutorID)
	}

	var rows []row
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := StatusCounts{}
	for _, item := range rows {
		counts[item.Status] = item.Total
	}
	return counts, nil
}

func (r *enrollmentRepository) PaymentTotals(ctx context.Context, tutorID *uint, since *time.Time) (PaymentTotals, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COUNT(payments.id) AS count, COALESCE(SUM(payments.amount), 0) AS amount, COALESCE(SUM(payments.commission_amount), 0) AS commission")

	if tutorID != nil {
		query = query.
			Joins("JOIN enrollments ON enrollments.id = payments.enrollment_id").
			Where("enrollments.tutor_id = ?", *tutorID)
	}
	if since != nil {
		query = query.Where("payments.recorded_at >= ?", *since)
	}

	var totals PaymentTotals
	if err := query.Scan(&totals).Error; err != nil {
		return PaymentTotals{}, err
	}
	return totals, nil
}
