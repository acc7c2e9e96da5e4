package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// ReviewAggregate summarises reviews for one tutor.
type ReviewAggregate struct {
	Count               int64
	AverageRating       float64
	AverageContentClear float64
	AverageResponsive   float64
}

// TutorRankingRow is one approved tutor with review aggregates.
type TutorRankingRow struct {
	TutorID       uint
	FullName      string
	Username      string
	UniversityID  *uint
	ReviewCount   int64
	AverageRating float64
}

// ReviewRepository persists the append-only review ledger.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ExistsForPair(ctx context.Context, studentID, tutorID uint) (bool, error)
	ListByTutor(ctx context.Context, tutorID uint, limit int) ([]models.Review, error)
	ReviewedTutorIDs(ctx context.Context, studentID uint) (map[uint]bool, error)
	Aggregate(ctx context.Context, tutorID uint) (ReviewAggregate, error)
	Ranking(ctx context.Context) ([]TutorRankingRow, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository instantiates a GORM-backed repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) ExistsForPair(ctx context.Context, studentID, tutorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("student_id = ? AND tutor_id = ?", studentID, tutorID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) ListByTutor(ctx context.Context, tutorID uint, limit int) ([]models.Review, error) {
	query := r.db.WithContext(ctx).
		Preload("Student").
		Where("tutor_id = ?", tutorID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) ReviewedTutorIDs(ctx context.Context, studentID uint) (map[uint]bool, error) {
	var tutorIDs []uint
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("student_id = ?", studentID).
		Pluck("tutor_id", &tutorIDs).Error
	if err != nil {
		return nil, err
	}

	reviewed := make(map[uint]bool, len(tutorIDs))
	for _, id := range tutorIDs {
		reviewed[id] = true
	}
	return reviewed, nil
}

func (r *reviewRepository) Aggregate(ctx context.Context, tutorID uint) (ReviewAggregate, error) {
	var aggregate ReviewAggregate
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select(`COUNT(id) AS count,
			COALESCE(AVG(rating), 0) AS average_rating,
			COALESCE(AVG(content_clear_score), 0) AS average_content_clear,
			COALESCE(AVG(tutor_responsive_score), 0) AS average_responsive`).
		Where("tutor_id = ?", tutorID).
		Scan(&aggregate).Error
	if err != nil {
		return ReviewAggregate{}, err
	}
	return aggregate, nil
}

// Ranking lists approved tutors by average rating, then review count.
func (r *reviewRepository) Ranking(ctx context.Context) ([]TutorRankingRow, error) {
	var rows []TutorRankingRow
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Select(`accounts.id AS tutor_id,
			accounts.full_name AS full_name,
			accounts.username AS username,
			accounts.university_id AS university_id,
			COUNT(reviews.id) AS review_count,
			COALESCE(AVG(reviews.rating), 0) AS average_rating`).
		Joins("LEFT JOIN reviews ON reviews.tutor_id = accounts.id").
		Where("accounts.role = ? AND accounts.tutor_status = ?", models.RoleTutor, models.TutorStatusApproved).
		Group("accounts.id, accounts.full_name, accounts.username, accounts.university_id").
		Order("average_rating DESC").
		Order("review_count DESC").
		Order("accounts.full_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
