package models

import (
	"time"

	"gorm.io/gorm"
)

// Message belongs to the chat thread of one swap request.
type Message struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SwapRequestID uint           `gorm:"not null;index" json:"swap_request_id"`
	SenderID      uint           `gorm:"not null;index" json:"sender_id"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	IsRead        bool           `gorm:"default:false;index" json:"is_read"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
