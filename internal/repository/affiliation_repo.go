package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// AffiliationRepository persists the university -> category -> course taxonomy.
type AffiliationRepository interface {
	CreateUniversity(ctx context.Context, university *models.University) error
	ListUniversities(ctx context.Context) ([]models.University, error)
	GetUniversity(ctx context.Context, id uint) (models.University, error)
	FindUniversityByName(ctx context.Context, name string) (models.University, error)
	DeleteUniversity(ctx context.Context, id uint) error

	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context, universityID uint) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	CreateCourse(ctx context.Context, course *models.Course) error
	ListCourses(ctx context.Context, categoryID uint) ([]models.Course, error)
	GetCourse(ctx context.Context, id uint) (models.Course, error)
	DeleteCourse(ctx context.Context, id uint) error
}

type affiliationRepository struct {
	db *gorm.DB
}

// NewAffiliationRepository instantiates a GORM-backed repository.
func NewAffiliationRepository(db *gorm.DB) AffiliationRepository {
	return &affiliationRepository{db: db}
}

func (r *affiliationRepository) CreateUniversity(ctx context.Context, university *models.University) error {
	return r.db.WithContext(ctx).Create(university).Error
}

func (r *affiliationRepository) ListUniversities(ctx context.Context) ([]models.University, error) {
	var universities []models.University
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&universities).Error; err != nil {
		return nil, err
	}
	return universities, nil
}

func (r *affiliationRepository) GetUniversity(ctx context.Context, id uint) (models.University, error) {
	var university models.University
	if err := r.db.WithContext(ctx).First(&university, id).Error; err != nil {
		return models.University{}, err
	}
	return university, nil
}

func (r *affiliationRepository) FindUniversityByName(ctx context.Context, name string) (models.University, error) {
	var university models.University
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&university).Error; err != nil {
		return models.University{}, err
	}
	return university, nil
}

func (r *affiliationRepository) DeleteUniversity(ctx context.Context, id uint) error {
	return r.deleteUnreferenced(ctx, &models.University{}, id,
		reference{model: &models.Category{}, column: "university_id"},
		reference{model: &models.Account{}, column: "university_id"},
	)
}

func (r *affiliationRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *affiliationRepository) ListCategories(ctx context.Context, universityID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("university_id = ?", universityID).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *affiliationRepository) GetCategory(ctx context.Context, id uint) (models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (r *affiliationRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.deleteUnreferenced(ctx, &models.Category{}, id,
		reference{model: &models.Course{}, column: "category_id"},
	)
}

func (r *affiliationRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *affiliationRepository) ListCourses(ctx context.Context, categoryID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("name ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *affiliationRepository) GetCourse(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Category").First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *affiliationRepository) DeleteCourse(ctx context.Context, id uint) error {
	return r.deleteUnreferenced(ctx, &models.Course{}, id,
		reference{model: &models.Document{}, column: "course_id"},
	)
}

type reference struct {
	model  interface{}
	column string
}

// deleteUnreferenced removes the row only when no referencing rows exist. The
// check and delete share a transaction.
func (r *affiliationRepository) deleteUnreferenced(ctx context.Context, model interface{}, id uint, refs ...reference) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ref := range refs {
			var count int64
			if err := tx.Model(ref.model).Where(ref.column+" = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrInUse
			}
		}

		result := tx.Delete(model, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
