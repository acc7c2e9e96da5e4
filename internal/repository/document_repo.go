package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// DocumentRepository persists document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uint) (models.Document, error)
	ListByTutor(ctx context.Context, tutorID uint) ([]models.Document, error)
	ListByUniversity(ctx context.Context, universityID uint) ([]models.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository instantiates a GORM-backed repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (models.Document, error) {
	var document models.Document
	if err := r.withRelations(ctx).First(&document, id).Error; err != nil {
		return models.Document{}, err
	}
	return document, nil
}

func (r *documentRepository) ListByTutor(ctx context.Context, tutorID uint) ([]models.Document, error) {
	var documents []models.Document
	err := r.withRelations(ctx).
		Where("tutor_id = ?", tutorID).
		Order("created_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

// ListByUniversity returns documents filed under any course of the university.
func (r *documentRepository) ListByUniversity(ctx context.Context, universityID uint) ([]models.Document, error) {
	var documents []models.Document
	err := r.withRelations(ctx).
		Joins("JOIN courses ON courses.id = documents.course_id").
		Joins("JOIN categories ON categories.id = courses.category_id").
		Where("categories.university_id = ?", universityID).
		Order("documents.created_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *documentRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Course.Category").
		Preload("Tutor")
}
