package models

import "time"

// SystemSettingID is the primary key of the single settings row.
const SystemSettingID uint = 1

// SystemSetting holds platform-wide values editable by administrators.
type SystemSetting struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CommissionRate float64   `gorm:"not null" json:"commission_rate"`
	UpdatedBy      *uint     `json:"updated_by"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// All lists every persisted model, in dependency order, for schema migration.
func All() []interface{} {
	return []interface{}{
		&University{},
		&Category{},
		&Course{},
		&Account{},
		&Enrollment{},
		&Payment{},
		&Document{},
		&Review{},
		&SystemSetting{},
		&ActivityLog{},
	}
}
