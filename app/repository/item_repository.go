package repository

import (
	"strings"
	"time"

	"github.com/swapit-app/swapit/app/models"
	"gorm.io/gorm"
)

// itemRepository implements the ItemRepository interface
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository instance
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// Create creates a new item in the database
func (r *itemRepository) Create(item *models.Item) error {
	return r.db.Create(item).Error
}

// GetByID retrieves an item by its ID
func (r *itemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.Preload("User").First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByUUID retrieves an item by its public UUID
func (r *itemRepository) GetByUUID(uuid string) (*models.Item, error) {
	var item models.Item
	err := r.db.Preload("User").Where("uuid = ?", uuid).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByUserID retrieves items belonging to a specific user with pagination
func (r *itemRepository) GetByUserID(userID uint, offset, limit int) ([]models.Item, error) {
	var items []models.Item
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	return items, err
}

// Update updates an existing item in the database
func (r *itemRepository) Update(item *models.Item) error {
	return r.db.Save(item).Error
}

// Delete soft-deletes an item
func (r *itemRepository) Delete(id uint) error {
	return r.db.Delete(&models.Item{}, id).Error
}

func (r *itemRepository) applyFilter(filter ItemFilter) *gorm.DB {
	q := r.db.Model(&models.Item{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		like := "%" + query + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	return q
}

// List retrieves items matching the filter. The boosted sort floats items with
// an unexpired boost to the top, newest first within each group.
func (r *itemRepository) List(filter ItemFilter) ([]models.Item, error) {
	q := r.applyFilter(filter)

	switch filter.Sort {
	case "boosted":
		q = q.Order("(is_boosted = 1 AND boost_expires_at > NOW()) DESC, created_at DESC")
	default:
		q = q.Order("created_at DESC")
	}

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var items []models.Item
	err := q.Preload("User").Find(&items).Error
	return items, err
}

// Count counts items matching the filter
func (r *itemRepository) Count(filter ItemFilter) (int64, error) {
	var count int64
	err := r.applyFilter(filter).Count(&count).Error
	return count, err
}

// GetBoosted retrieves items whose boost has not expired yet
func (r *itemRepository) GetBoosted(limit int) ([]models.Item, error) {
	var items []models.Item
	err := r.db.Where("is_boosted = ? AND boost_expires_at > ?", true, time.Now()).
		Where("status = ?", models.ItemStatusAvailable).
		Order("boost_expires_at ASC").Limit(limit).Find(&items).Error
	return items, err
}

// UpdateStatus updates an item's lifecycle status
func (r *itemRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Item{}).Where("id = ?", id).
		Update("status", status).Error
}

// IncrementViewCount bumps the item's view counter
func (r *itemRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&models.Item{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
