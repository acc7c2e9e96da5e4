package dto

import (
	"time"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// UniversityCreateRequest creates a university.
type UniversityCreateRequest struct {
	Name string `json:"name" validate:"required,notblank,max=120"`
}

// CategoryCreateRequest creates a category under a university.
type CategoryCreateRequest struct {
	Name string `json:"name" validate:"required,notblank,max=120"`
}

// CourseCreateRequest creates a course under a category.
type CourseCreateRequest struct {
	Name string `json:"name" validate:"required,notblank,max=120"`
	Code string `json:"code" validate:"required,notblank,max=32"`
}

// UniversityResponse is the serialized university.
type UniversityResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryResponse is the serialized category.
type CategoryResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	UniversityID uint      `json:"university_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// CourseResponse is the serialized course.
type CourseResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	CategoryID uint      `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUniversityResponse converts a model into a DTO.
func NewUniversityResponse(model models.University) UniversityResponse {
	return UniversityResponse{ID: model.ID, Name: model.Name, CreatedAt: model.CreatedAt}
}

// NewUniversityResponseSlice converts a slice of models into DTOs.
func NewUniversityResponseSlice(items []models.University) []UniversityResponse {
	responses := make([]UniversityResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewUniversityResponse(item))
	}
	return responses
}

// NewCategoryResponse converts a model into a DTO.
func NewCategoryResponse(model models.Category) CategoryResponse {
	return CategoryResponse{
		ID:           model.ID,
		Name:         model.Name,
		UniversityID: model.UniversityID,
		CreatedAt:    model.CreatedAt,
	}
}

// NewCategoryResponseSlice converts a slice of models into DTOs.
func NewCategoryResponseSlice(items []models.Category) []CategoryResponse {
	responses := make([]CategoryResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewCategoryResponse(item))
	}
	return responses
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:         model.ID,
		Name:       model.Name,
		Code:       model.Code,
		CategoryID: model.CategoryID,
		CreatedAt:  model.CreatedAt,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(items []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewCourseResponse(item))
	}
	return responses
}
