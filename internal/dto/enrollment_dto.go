package dto

import (
	"time"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// EnrollmentSubmitRequest opens an enrollment with a tutor.
type EnrollmentSubmitRequest struct {
	TutorID uint `json:"tutor_id" validate:"required"`
}

// PaymentCreateRequest records a payment against an approved enrollment.
type PaymentCreateRequest struct {
	Amount float64 `json:"amount" validate:"gt=0,lte=1000000000"`
	Period string  `json:"period" validate:"required,period"`
}

// EnrollmentResponse is the serialized enrollment.
type EnrollmentResponse struct {
	ID          uint       `json:"id"`
	StudentID   uint       `json:"student_id"`
	StudentName string     `json:"student_name,omitempty"`
	TutorID     uint       `json:"tutor_id"`
	TutorName   string     `json:"tutor_name,omitempty"`
	Status      string     `json:"status"`
	DecidedAt   *time.Time `json:"decided_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PaymentResponse is the serialized payment ledger entry.
type PaymentResponse struct {
	ID               uint      `json:"id"`
	EnrollmentID     uint      `json:"enrollment_id"`
	Amount           float64   `json:"amount"`
	Period           string    `json:"period"`
	CommissionRate   float64   `json:"commission_rate"`
	CommissionAmount float64   `json:"commission_amount"`
	RecordedBy       uint      `json:"recorded_by"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:        model.ID,
		StudentID: model.StudentID,
		TutorID:   model.TutorID,
		Status:    string(model.Status),
		DecidedAt: model.DecidedAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.Student != nil {
		response.StudentName = model.Student.FullName
	}
	if model.Tutor != nil {
		response.TutorName = model.Tutor.FullName
	}
	return response
}

// NewEnrollmentResponseSlice converts a slice of models into DTOs.
func NewEnrollmentResponseSlice(items []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewEnrollmentResponse(item))
	}
	return responses
}

// NewPaymentResponse converts a model into a DTO.
func NewPaymentResponse(model models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               model.ID,
		EnrollmentID:     model.EnrollmentID,
		Amount:           model.Amount,
		Period:           model.Period,
		CommissionRate:   model.CommissionRate,
		CommissionAmount: model.CommissionAmount,
		RecordedBy:       model.RecordedBy,
		RecordedAt:       model.RecordedAt,
	}
}

// NewPaymentResponseSlice converts a slice of models into DTOs.
func NewPaymentResponseSlice(items []models.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewPaymentResponse(item))
	}
	return responses
}
