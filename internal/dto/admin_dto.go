package dto

import (
	"time"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// AdminActivityListRequest defines filters for retrieving activity logs.
type AdminActivityListRequest struct {
	Page       int
	PageSize   int
	ActorID    uint
	Action     string
	EntityType string
}

// AdminActivityResponse serializes activity log entries.
type AdminActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AdminActivityListResponse wraps paginated activity logs.
type AdminActivityListResponse struct {
	Items      []AdminActivityResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}

// NewAdminActivityResponse converts a model into an activity DTO.
func NewAdminActivityResponse(entry models.ActivityLog) AdminActivityResponse {
	metadata := make(map[string]interface{}, len(entry.Metadata))
	for key, value := range entry.Metadata {
		metadata[key] = value
	}

	return AdminActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// SettingsResponse exposes platform settings; the rate is reported both ways.
type SettingsResponse struct {
	CommissionRate        float64   `json:"commission_rate"`
	CommissionRatePercent float64   `json:"commission_rate_percent"`
	UpdatedBy             *uint     `json:"updated_by"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// SettingsUpdateRequest sets the commission rate as a percentage.
type SettingsUpdateRequest struct {
	CommissionRatePercent *float64 `json:"commission_rate_percent" validate:"required,gte=0,lte=100"`
}

// NewSettingsResponse converts the settings row into a DTO.
func NewSettingsResponse(setting models.SystemSetting) SettingsResponse {
	return SettingsResponse{
		CommissionRate:        setting.CommissionRate,
		CommissionRatePercent: roundCents(setting.CommissionRate * 100),
		UpdatedBy:             setting.UpdatedBy,
		UpdatedAt:             setting.UpdatedAt,
	}
}

// TutorCount breaks down tutors by vetting status.
type TutorCount struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// EnrollmentCount breaks down enrollments by status.
type EnrollmentCount struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// AdminDashboardResponse aggregates platform totals.
type AdminDashboardResponse struct {
	Students              int64           `json:"students"`
	Tutors                TutorCount      `json:"tutors"`
	Universities          int64           `json:"universities"`
	Courses               int64           `json:"courses"`
	Documents             int64           `json:"documents"`
	Enrollments           EnrollmentCount `json:"enrollments"`
	PaymentsTotal         float64         `json:"payments_total"`
	CommissionTotal       float64         `json:"commission_total"`
	CommissionRatePercent float64         `json:"commission_rate_percent"`
	GeneratedAt           time.Time       `json:"generated_at"`
}

func roundCents(value float64) float64 {
	if value < 0 {
		return -roundCents(-value)
	}
	return float64(int64(value*100+0.5)) / 100
}
