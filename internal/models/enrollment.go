package models

import "time"

// EnrollmentStatus is the state of a student's relationship with a tutor.
type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "pending"
	EnrollmentStatusApproved EnrollmentStatus = "approved"
	EnrollmentStatusRejected EnrollmentStatus = "rejected"
)

// Enrollment links one student to one tutor. Rows are transitioned, never deleted.
type Enrollment struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	StudentID uint             `gorm:"not null;uniqueIndex:idx_enrollment_pair" json:"student_id"`
	Student   *Account         `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	TutorID   uint             `gorm:"not null;uniqueIndex:idx_enrollment_pair;index" json:"tutor_id"`
	Tutor     *Account         `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	Status    EnrollmentStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	DecidedAt *time.Time       `json:"decided_at"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Payments  []Payment        `json:"payments,omitempty"`
}

// IsApproved reports whether the enrollment has been approved by its tutor.
func (e Enrollment) IsApproved() bool {
	return e.Status == EnrollmentStatusApproved
}

// IsParty reports whether the account is the enrollment's student or tutor.
func (e Enrollment) IsParty(accountID uint) bool {
	return accountID != 0 && (e.StudentID == accountID || e.TutorID == accountID)
}
