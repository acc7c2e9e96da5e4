package models

import "time"

// PeriodLayout formats billing periods.
const PeriodLayout = "2006-01"

// Payment is an immutable ledger entry recorded by a tutor against an approved enrollment.
type Payment struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	EnrollmentID     uint        `gorm:"not null;index" json:"enrollment_id"`
	Enrollment       *Enrollment `json:"enrollment,omitempty"`
	Amount           float64     `gorm:"not null" json:"amount"`
	Period           string      `gorm:"size:7;not null;index" json:"period"`
	CommissionRate   float64     `gorm:"not null" json:"commission_rate"`
	CommissionAmount float64     `gorm:"not null" json:"commission_amount"`
	RecordedBy       uint        `gorm:"not null" json:"recorded_by"`
	RecordedAt       time.Time   `gorm:"not null;index" json:"recorded_at"`
}

// PeriodOf returns the billing period a timestamp falls in.
func PeriodOf(t time.Time) string {
	return t.Format(PeriodLayout)
}

// ValidPeriod reports whether value is a well-formed billing period.
func ValidPeriod(value string) bool {
	if len(value) != len(PeriodLayout) {
		return false
	}
	_, err := time.Parse(PeriodLayout, value)
	return err == nil
}
