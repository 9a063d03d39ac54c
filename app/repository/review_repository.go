package repository

import (
	"github.com/swapit-app/swapit/app/models"
	"gorm.io/gorm"
)

// reviewRepository implements the ReviewRepository interface
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create creates a new review in the database
func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// GetByRevieweeID retrieves reviews received by a user with pagination
func (r *reviewRepository) GetByRevieweeID(revieweeID uint, offset, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Where("reviewee_id = ?", revieweeID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error
	return reviews, err
}

// ExistsForSwapAndReviewer checks whether the reviewer already reviewed the swap
func (r *reviewRepository) ExistsForSwapAndReviewer(swapRequestID, reviewerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("swap_request_id = ? AND reviewer_id = ?", swapRequestID, reviewerID).
		Count(&count).Error
	return count > 0, err
}
