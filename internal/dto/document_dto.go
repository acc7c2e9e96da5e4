package dto

import (
	"time"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// DocumentUploadRequest describes the multipart form fields of an upload.
type DocumentUploadRequest struct {
	Title    string `form:"title" json:"title" validate:"required,notblank,max=200"`
	CourseID uint   `form:"course_id" json:"course_id" validate:"required"`
}

// DocumentResponse is the serialized document metadata.
type DocumentResponse struct {
	ID         uint      `json:"id"`
	TutorID    uint      `json:"tutor_id"`
	TutorName  string    `json:"tutor_name,omitempty"`
	CourseID   uint      `json:"course_id"`
	CourseName string    `json:"course_name,omitempty"`
	CourseCode string    `json:"course_code,omitempty"`
	Title      string    `json:"title"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDocumentResponse converts a model into a DTO.
func NewDocumentResponse(model models.Document) DocumentResponse {
	response := DocumentResponse{
		ID:        model.ID,
		TutorID:   model.TutorID,
		CourseID:  model.CourseID,
		Title:     model.Title,
		FileName:  model.FileName,
		MimeType:  model.MimeType,
		SizeBytes: model.SizeBytes,
		CreatedAt: model.CreatedAt,
	}
	if model.Tutor != nil {
		response.TutorName = model.Tutor.FullName
	}
	if model.Course != nil {
		response.CourseName = model.Course.Name
		response.CourseCode = model.Course.Code
	}
	return response
}

// NewDocumentResponseSlice converts a slice of models into DTOs.
func NewDocumentResponseSlice(items []models.Document) []DocumentResponse {
	responses := make([]DocumentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewDocumentResponse(item))
	}
	return responses
}
