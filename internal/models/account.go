package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role is the closed set of account roles.
type Role string

const (
	// RoleAdmin manages taxonomy, settings and tutor vetting.
	RoleAdmin Role = "admin"
	// RoleTutor owns enrollments, payments and documents.
	RoleTutor Role = "tutor"
	// RoleStudent enrolls with tutors, views documents and writes reviews.
	RoleStudent Role = "student"
)

// ParseRole normalises a role string, reporting whether it names a known role.
func ParseRole(value string) (Role, bool) {
	switch role := Role(strings.ToLower(strings.TrimSpace(value))); role {
	case RoleAdmin, RoleTutor, RoleStudent:
		return role, true
	default:
		return "", false
	}
}

func (r Role) String() string {
	return string(r)
}

// TutorStatus tracks administrator vetting of tutor accounts.
type TutorStatus string

const (
	TutorStatusPending  TutorStatus = "pending"
	TutorStatusApproved TutorStatus = "approved"
	TutorStatusRejected TutorStatus = "rejected"
)

// Account is a platform identity. Role is fixed at creation.
type Account struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Role         Role        `gorm:"size:16;not null;index" json:"role"`
	Username     string      `gorm:"size:25;not null;uniqueIndex" json:"username"`
	Email        string      `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName     string      `gorm:"size:120;not null" json:"full_name"`
	PasswordHash string      `gorm:"size:255;not null" json:"-"`
	UniversityID *uint       `gorm:"index" json:"university_id"`
	University   *University `json:"university,omitempty"`
	TutorStatus  TutorStatus `gorm:"size:16;index" json:"tutor_status,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// SetPassword hashes and stores the given plaintext password.
func (a *Account) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func (a Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// IsActiveTutor reports whether the account is a tutor cleared to take students.
func (a Account) IsActiveTutor() bool {
	return a.Role == RoleTutor && a.TutorStatus == TutorStatusApproved
}
