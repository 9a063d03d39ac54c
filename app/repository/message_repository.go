package repository

import (
	"github.com/swapit-app/swapit/app/models"
	"gorm.io/gorm"
)

// messageRepository implements the MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create creates a new chat message in the database
func (r *messageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// GetBySwapRequestID retrieves a swap request's chat thread, oldest first
func (r *messageRepository) GetBySwapRequestID(swapRequestID uint, offset, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("swap_request_id = ?", swapRequestID).
		Order("created_at ASC").Offset(offset).Limit(limit).Find(&messages).Error
	return messages, err
}

// MarkThreadRead marks all messages in the thread not sent by the reader as read
func (r *messageRepository) MarkThreadRead(swapRequestID, readerID uint) error {
	return r.db.Model(&models.Message{}).
		Where("swap_request_id = ? AND sender_id <> ? AND is_read = ?", swapRequestID, readerID, false).
		Update("is_read", true).Error
}

// CountUnreadForUser counts unread messages across all of the user's swap threads
func (r *messageRepository) CountUnreadForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Joins("JOIN swap_requests ON swap_requests.id = messages.swap_request_id").
		Where("(swap_requests.requester_id = ? OR swap_requests.owner_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
