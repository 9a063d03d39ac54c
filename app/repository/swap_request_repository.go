package repository

import (
	"time"

	"github.com/swapit-app/swapit/app/models"
	"gorm.io/gorm"
)

// swapRequestRepository implements the SwapRequestRepository interface
type swapRequestRepository struct {
	db *gorm.DB
}

// NewSwapRequestRepository creates a new swap request repository instance
func NewSwapRequestRepository(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepository{db: db}
}

// Create creates a new swap request in the database
func (r *swapRequestRepository) Create(req *models.SwapRequest) error {
	return r.db.Create(req).Error
}

// GetByID retrieves a swap request by its ID
func (r *swapRequestRepository) GetByID(id uint) (*models.SwapRequest, error) {
	var req models.SwapRequest
	err := r.db.Preload("Item").First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByUserID retrieves swap requests where the user is requester or owner
func (r *swapRequestRepository) GetByUserID(userID uint, offset, limit int) ([]models.SwapRequest, error) {
	var reqs []models.SwapRequest
	err := r.db.Preload("Item").
		Where("requester_id = ? OR owner_id = ?", userID, userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reqs).Error
	return reqs, err
}

// GetPendingForItem retrieves open swap requests for an item
func (r *swapRequestRepository) GetPendingForItem(itemID uint) ([]models.SwapRequest, error) {
	var reqs []models.SwapRequest
	err := r.db.Where("item_id = ? AND status = ?", itemID, models.SwapStatusPending).
		Order("created_at ASC").Find(&reqs).Error
	return reqs, err
}

// UpdateStatus moves a swap request to the given status and stamps the
// matching timestamp column.
func (r *swapRequestRepository) UpdateStatus(req *models.SwapRequest, status string) error {
	now := time.Now()
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.SwapStatusAccepted, models.SwapStatusDeclined:
		updates["responded_at"] = &now
	case models.SwapStatusCompleted:
		updates["completed_at"] = &now
	}

	if err := r.db.Model(req).Updates(updates).Error; err != nil {
		return err
	}
	req.Status = status
	return nil
}
