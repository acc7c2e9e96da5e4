package dto

import (
	"time"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// ReviewCreateRequest submits a review. Range checks happen in the service so
// out-of-range scores surface as invalid input rather than binding errors.
type ReviewCreateRequest struct {
	TutorID              uint   `json:"tutor_id" validate:"required"`
	Rating               int    `json:"rating"`
	ContentClearScore    int    `json:"content_clear_score"`
	TutorResponsiveScore int    `json:"tutor_responsive_score"`
	Comment              string `json:"comment"`
}

// ReviewResponse is the serialized review.
type ReviewResponse struct {
	ID                   uint      `json:"id"`
	StudentID            uint      `json:"student_id"`
	StudentName          string    `json:"student_name,omitempty"`
	TutorID              uint      `json:"tutor_id"`
	Rating               int       `json:"rating"`
	ContentClearScore    int       `json:"content_clear_score"`
	TutorResponsiveScore int       `json:"tutor_responsive_score"`
	Comment              string    `json:"comment"`
	CreatedAt            time.Time `json:"created_at"`
}

// ReviewStats summarises the reviews a tutor has received.
type ReviewStats struct {
	Count               int64   `json:"count"`
	AverageRating       float64 `json:"average_rating"`
	AverageContentClear float64 `json:"average_content_clear"`
	AverageResponsive   float64 `json:"average_responsive"`
}

// TutorRankingEntry is one row of the public tutor ranking.
type TutorRankingEntry struct {
	TutorID       uint    `json:"tutor_id"`
	FullName      string  `json:"full_name"`
	Username      string  `json:"username"`
	UniversityID  *uint   `json:"university_id"`
	ReviewCount   int64   `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

// NewReviewResponse converts a model into a DTO.
func NewReviewResponse(model models.Review) ReviewResponse {
	response := ReviewResponse{
		ID:                   model.ID,
		StudentID:            model.StudentID,
		TutorID:              model.TutorID,
		Rating:               model.Rating,
		ContentClearScore:    model.ContentClearScore,
		TutorResponsiveScore: model.TutorResponsiveScore,
		Comment:              model.Comment,
		CreatedAt:            model.CreatedAt,
	}
	if model.Student != nil {
		response.StudentName = model.Student.FullName
	}
	return response
}

// NewReviewResponseSlice converts a slice of models into DTOs.
func NewReviewResponseSlice(items []models.Review) []ReviewResponse {
	responses := make([]ReviewResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewReviewResponse(item))
	}
	return responses
}
