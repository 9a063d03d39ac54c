package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Review is feedback left after a completed swap. One review per swap request
// per reviewer.
type Review struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SwapRequestID uint           `gorm:"not null;index:ux_reviews_swap_reviewer,unique,priority:1" json:"swap_request_id"`
	ReviewerID    uint           `gorm:"not null;index:ux_reviews_swap_reviewer,unique,priority:2;index" json:"reviewer_id"`
	RevieweeID    uint           `gorm:"not null;index" json:"reviewee_id"`
	Rating        int            `gorm:"not null" json:"rating" validate:"required,min=1,max=5"`
	Comment       string         `gorm:"type:text" json:"comment" validate:"max=2000"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Review) Validate() error {
	v := validator.New()

	return v.Struct(r)
}
