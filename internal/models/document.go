package models

import (
	"strings"
	"time"
)

// Document is tutor-uploaded course material. Visibility is decided at read time.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TutorID     uint      `gorm:"not null;index" json:"tutor_id"`
	Tutor       *Account  `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Course      *Course   `json:"course,omitempty"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	StoragePath string    `gorm:"size:512;not null" json:"-"`
	MimeType    string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// UniversityID resolves the document's university through its course.
func (d Document) UniversityID() (uint, bool) {
	if d.Course == nil {
		return 0, false
	}
	return d.Course.UniversityID()
}

// IsRemote reports whether the storage path is a URL rather than a local file.
func (d Document) IsRemote() bool {
	return strings.HasPrefix(d.StoragePath, "http://") || strings.HasPrefix(d.StoragePath, "https://")
}
