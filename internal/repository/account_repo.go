package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	CreateStudentWithEnrollment(ctx context.Context, account *models.Account, tutorID uint) (models.Enrollment, error)
	GetByID(ctx context.Context, id uint) (models.Account, error)
	GetByUsername(ctx context.Context, username string) (models.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListTutors(ctx context.Context, status models.TutorStatus) ([]models.Account, error)
	TransitionTutorStatus(ctx context.Context, id uint, from, to models.TutorStatus) (models.Account, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository instantiates a GORM-backed repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// CreateStudentWithEnrollment persists a student and its first pending
// enrollment in one transaction so registration never leaves half a record.
func (r *accountRepository) CreateStudentWithEnrollment(ctx context.Context, account *models.Account, tutorID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return err
		}

		enrollment = models.Enrollment{
			StudentID: account.ID,
			TutorID:   tutorID,
			Status:    models.EnrollmentStatusPending,
		}
		return tx.Create(&enrollment).Error
	})
	if err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&account).Error
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (r *accountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error
	return count > 0, err
}

func (r *accountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

func (r *accountRepository) ListTutors(ctx context.Context, status models.TutorStatus) ([]models.Account, error) {
	query := r.db.WithContext(ctx).Where("role = ?", models.RoleTutor)
	if status != "" {
		query = query.Where("tutor_status = ?", status)
	}

	var tutors []models.Account
	if err := query.Order("created_at ASC").Find(&tutors).Error; err != nil {
		return nil, err
	}
	return tutors, nil
}

func (r *accountRepository) TransitionTutorStatus(ctx context.Context, id uint, from, to models.TutorStatus) (models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Account{}).
			Where("id = ? AND role = ? AND tutor_status = ?", id, models.RoleTutor, from).
			Update("tutor_status", to)
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("role = ?", models.RoleTutor).First(&account, id).Error; err != nil {
			return err
		}
		if result.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return nil
	})
	if err != nil {
		return account, err
	}
	return account, nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
