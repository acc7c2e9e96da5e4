package dto

import "time"

// StudentCounts breaks a tutor's roster down by enrollment status.
type StudentCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// RevenueSummary reports payments recorded in the current month.
type RevenueSummary struct {
	Period          string  `json:"period"`
	Total           float64 `json:"total"`
	CommissionOwed  float64 `json:"commission_owed"`
	NetEarnings     float64 `json:"net_earnings"`
	PaymentsCounted int     `json:"payments_counted"`
}

// TutorDashboardResponse aggregates a tutor's roster, revenue and reviews.
type TutorDashboardResponse struct {
	Students      StudentCounts    `json:"students"`
	Revenue       RevenueSummary   `json:"revenue"`
	Reviews       ReviewStats      `json:"reviews"`
	LatestReviews []ReviewResponse `json:"latest_reviews"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// StudentEnrollmentSummary describes one enrollment from the student's side.
type StudentEnrollmentSummary struct {
	Enrollment      EnrollmentResponse `json:"enrollment"`
	Paid            bool               `json:"paid"`
	ContentUnlocked bool               `json:"content_unlocked"`
	Reviewed        bool               `json:"reviewed"`
}

// StudentDashboardResponse lists the student's enrollments and their standing.
type StudentDashboardResponse struct {
	Enrollments []StudentEnrollmentSummary `json:"enrollments"`
	GeneratedAt time.Time                  `json:"generated_at"`
}
