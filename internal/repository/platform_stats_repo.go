package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// PlatformCounts holds row counts used by the admin dashboard.
type PlatformCounts struct {
	Students     int64
	Tutors       map[models.TutorStatus]int64
	Universities int64
	Courses      int64
	Documents    int64
}

// PlatformStatsRepository supplies data for the administrator dashboard.
type PlatformStatsRepository interface {
	Counts(ctx context.Context) (PlatformCounts, error)
}

type platformStatsRepository struct {
	db *gorm.DB
}

// NewPlatformStatsRepository constructs the stats repository.
func NewPlatformStatsRepository(db *gorm.DB) PlatformStatsRepository {
	return &platformStatsRepository{db: db}
}

func (r *platformStatsRepository) Counts(ctx context.Context) (PlatformCounts, error) {
	db := r.db.WithContext(ctx)
	counts := PlatformCounts{Tutors: map[models.TutorStatus]int64{}}

	if err := db.Model(&models.Account{}).Where("role = ?", models.RoleStudent).Count(&counts.Students).Error; err != nil {
		return PlatformCounts{}, err
	}

	type tutorRow struct {
		TutorStatus models.TutorStatus
		Total       int64
	}
	var rows []tutorRow
	err := db.Model(&models.Account{}).
		Select("tutor_status, COUNT(*) AS total").
		Where("role = ?", models.RoleTutor).
		Group("tutor_status").
		Scan(&rows).Error
	if err != nil {
		return PlatformCounts{}, err
	}
	for _, row := range rows {
		counts.Tutors[row.TutorStatus] = row.Total
	}

	if err := db.Model(&models.University{}).Count(&counts.Universities).Error; err != nil {
		return PlatformCounts{}, err
	}
	if err := db.Model(&models.Course{}).Count(&counts.Courses).Error; err != nil {
		return PlatformCounts{}, err
	}
	if err := db.Model(&models.Document{}).Count(&counts.Documents).Error; err != nil {
		return PlatformCounts{}, err
	}

	return counts, nil
}
