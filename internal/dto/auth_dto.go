package dto

import (
	"time"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// StudentRegisterRequest registers a student and opens an enrollment with the chosen tutor.
type StudentRegisterRequest struct {
	Username     string `json:"username" validate:"required,min=4,max=25,alphanum"`
	Email        string `json:"email" validate:"required,email,max=255"`
	FullName     string `json:"full_name" validate:"required,notblank,max=120"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	UniversityID uint   `json:"university_id" validate:"required"`
	TutorID      uint   `json:"tutor_id" validate:"required"`
}

// TutorRegisterRequest registers a tutor awaiting administrator approval.
type TutorRegisterRequest struct {
	Username     string `json:"username" validate:"required,min=4,max=25,alphanum"`
	Email        string `json:"email" validate:"required,email,max=255"`
	FullName     string `json:"full_name" validate:"required,notblank,max=120"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	UniversityID uint   `json:"university_id" validate:"required"`
}

// LoginRequest carries username/password credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID           uint      `json:"id"`
	Role         string    `json:"role"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	UniversityID *uint     `json:"university_id"`
	TutorStatus  string    `json:"tutor_status,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginResponse returns the issued session token.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   AccountResponse `json:"account"`
}

// StudentRegisterResponse returns the new account and its first enrollment.
type StudentRegisterResponse struct {
	Account    AccountResponse    `json:"account"`
	Enrollment EnrollmentResponse `json:"enrollment"`
}

// NewAccountResponse converts a model into a DTO.
func NewAccountResponse(model models.Account) AccountResponse {
	return AccountResponse{
		ID:           model.ID,
		Role:         model.Role.String(),
		Username:     model.Username,
		Email:        model.Email,
		FullName:     model.FullName,
		UniversityID: model.UniversityID,
		TutorStatus:  string(model.TutorStatus),
		CreatedAt:    model.CreatedAt,
	}
}

// NewAccountResponseSlice converts a slice of models into DTOs.
func NewAccountResponseSlice(accounts []models.Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, NewAccountResponse(account))
	}
	return responses
}
