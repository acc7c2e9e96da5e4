package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

// AffiliationService manages the university, category and course registry.
type AffiliationService interface {
	ListUniversities(ctx context.Context) ([]dto.UniversityResponse, error)
	CreateUniversity(ctx context.Context, actor Actor, req dto.UniversityCreateRequest) (dto.UniversityResponse, error)
	DeleteUniversity(ctx context.Context, actor Actor, id uint) error

	ListCategories(ctx context.Context, universityID uint) ([]dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, actor Actor, universityID uint, req dto.CategoryCreateRequest) (dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, actor Actor, id uint) error

	ListCourses(ctx context.Context, categoryID uint) ([]dto.CourseResponse, error)
	CreateCourse(ctx context.Context, actor Actor, categoryID uint, req dto.CourseCreateRequest) (dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, actor Actor, id uint) error
}

type affiliationService struct {
	repo      repository.AffiliationRepository
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAffiliationService constructs the affiliation service.
func NewAffiliationService(repo repository.AffiliationRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) AffiliationService {
	return &affiliationService{
		repo:      repo,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "affiliation_service").Logger(),
	}
}

func (s *affiliationService) ListUniversities(ctx context.Context) ([]dto.UniversityResponse, error) {
	universities, err := s.repo.ListUniversities(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUniversityResponseSlice(universities), nil
}

func (s *affiliationService) CreateUniversity(ctx context.Context, actor Actor, req dto.UniversityCreateRequest) (dto.UniversityResponse, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return dto.UniversityResponse{}, err
	}
	if err := validateStruct(s.validator, req); err != nil {
		return dto.UniversityResponse{}, err
	}

	university := models.University{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateUniversity(ctx, &university); err != nil {
		return dto.UniversityResponse{}, mapAffiliationError(err, ErrUniversityNotFound)
	}

	s.audit(ctx, actor, "affiliation.create", "university", university.ID, university.Name)
	return dto.NewUniversityResponse(university), nil
}

func (s *affiliationService) DeleteUniversity(ctx context.Context, actor Actor, id uint) error {
	if err := actor.require(models.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.DeleteUniversity(ctx, id); err != nil {
		return mapAffiliationError(err, ErrUniversityNotFound)
	}

	s.audit(ctx, actor, "affiliation.delete", "university", id, "")
	return nil
}

func (s *affiliationService) ListCategories(ctx context.Context, universityID uint) ([]dto.CategoryResponse, error) {
	if _, err := s.repo.GetUniversity(ctx, universityID); err != nil {
		return nil, mapAffiliationError(err, ErrUniversityNotFound)
	}

	categories, err := s.repo.ListCategories(ctx, universityID)
	if err != nil {
		return nil, err
	}
	return dto.NewCategoryResponseSlice(categories), nil
}

func (s *affiliationService) CreateCategory(ctx context.Context, actor Actor, universityID uint, req dto.CategoryCreateRequest) (dto.CategoryResponse, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return dto.CategoryResponse{}, err
	}
	if err := validateStruct(s.validator, req); err != nil {
		return dto.CategoryResponse{}, err
	}
	if _, err := s.repo.GetUniversity(ctx, universityID); err != nil {
		return dto.CategoryResponse{}, mapAffiliationError(err, ErrUniversityNotFound)
	}

	category := models.Category{Name: strings.TrimSpace(req.Name), UniversityID: universityID}
	if err := s.repo.CreateCategory(ctx, &category); err != nil {
		return dto.CategoryResponse{}, mapAffiliationError(err, ErrCategoryNotFound)
	}

	s.audit(ctx, actor, "affiliation.create", "category", category.ID, category.Name)
	return dto.NewCategoryResponse(category), nil
}

func (s *affiliationService) DeleteCategory(ctx context.Context, actor Actor, id uint) error {
	if err := actor.require(models.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return mapAffiliationError(err, ErrCategoryNotFound)
	}

	s.audit(ctx, actor, "affiliation.delete", "category", id, "")
	return nil
}

func (s *affiliationService) ListCourses(ctx context.Context, categoryID uint) ([]dto.CourseResponse, error) {
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, mapAffiliationError(err, ErrCategoryNotFound)
	}

	courses, err := s.repo.ListCourses(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *affiliationService) CreateCourse(ctx context.Context, actor Actor, categoryID uint, req dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return dto.CourseResponse{}, err
	}
	if err := validateStruct(s.validator, req); err != nil {
		return dto.CourseResponse{}, err
	}
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return dto.CourseResponse{}, mapAffiliationError(err, ErrCategoryNotFound)
	}

	course := models.Course{
		Name:       strings.TrimSpace(req.Name),
		Code:       strings.ToUpper(strings.TrimSpace(req.Code)),
		CategoryID: categoryID,
	}
	if err := s.repo.CreateCourse(ctx, &course); err != nil {
		return dto.CourseResponse{}, mapAffiliationError(err, ErrCourseNotFound)
	}

	s.audit(ctx, actor, "affiliation.create", "course", course.ID, course.Name)
	return dto.NewCourseResponse(course), nil
}

func (s *affiliationService) DeleteCourse(ctx context.Context, actor Actor, id uint) error {
	if err := actor.require(models.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		return mapAffiliationError(err, ErrCourseNotFound)
	}

	s.audit(ctx, actor, "affiliation.delete", "course", id, "")
	return nil
}

func (s *affiliationService) audit(ctx context.Context, actor Actor, action, entityType string, id uint, name string) {
	metadata := map[string]interface{}{}
	if name != "" {
		metadata["name"] = name
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   uintPtr(id),
		Metadata:   metadata,
	})
}

func mapAffiliationError(err, notFound error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateAffiliation
	case errors.Is(err, repository.ErrInUse):
		return ErrAffiliationInUse
	default:
		return err
	}
}
