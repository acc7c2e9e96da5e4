package models

import "time"

// Review is an append-only student rating of a tutor.
type Review struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	StudentID            uint      `gorm:"not null;uniqueIndex:idx_review_pair" json:"student_id"`
	Student              *Account  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	TutorID              uint      `gorm:"not null;uniqueIndex:idx_review_pair;index" json:"tutor_id"`
	Rating               int       `gorm:"not null" json:"rating"`
	ContentClearScore    int       `gorm:"not null" json:"content_clear_score"`
	TutorResponsiveScore int       `gorm:"not null" json:"tutor_responsive_score"`
	Comment              string    `gorm:"size:500" json:"comment"`
	CreatedAt            time.Time `gorm:"index" json:"created_at"`
}
