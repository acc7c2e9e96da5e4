package models

import "time"

// University is the top of the affiliation taxonomy.
type University struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:120;not null;uniqueIndex" json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	Categories []Category `json:"categories,omitempty"`
}

// Category groups courses within a university.
type Category struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:120;not null;uniqueIndex:idx_category_university_name" json:"name"`
	UniversityID uint        `gorm:"not null;uniqueIndex:idx_category_university_name" json:"university_id"`
	University   *University `json:"university,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	Courses      []Course    `json:"courses,omitempty"`
}

// Course is the unit documents are filed under.
type Course struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:120;not null;uniqueIndex:idx_course_category_name" json:"name"`
	Code       string    `gorm:"size:32;not null" json:"code"`
	CategoryID uint      `gorm:"not null;uniqueIndex:idx_course_category_name" json:"category_id"`
	Category   *Category `json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// UniversityID resolves the owning university when the category is loaded.
func (c Course) UniversityID() (uint, bool) {
	if c.Category == nil {
		return 0, false
	}
	return c.Category.UniversityID, true
}
