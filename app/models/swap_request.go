package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusDeclined  = "declined"
	SwapStatusCanceled  = "canceled"
	SwapStatusCompleted = "completed"
)

// SwapRequest is one user's offer to swap for (or take over) another user's
// item. OfferedItemID is nil for give-away requests.
type SwapRequest struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ItemID        uint           `gorm:"not null;index" json:"item_id"`
	Item          Item           `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	OfferedItemID *uint          `gorm:"index" json:"offered_item_id,omitempty"`
	RequesterID   uint           `gorm:"not null;index" json:"requester_id"`
	OwnerID       uint           `gorm:"not null;index" json:"owner_id"`
	Status        string         `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Message       string         `gorm:"type:text" json:"message"`
	RespondedAt   *time.Time     `gorm:"type:timestamp;default:null" json:"responded_at,omitempty"`
	CompletedAt   *time.Time     `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// CanTransition reports whether the swap request may move to the given status.
// pending -> accepted|declined|canceled, accepted -> completed|canceled.
func (s *SwapRequest) CanTransition(to string) bool {
	switch s.Status {
	case SwapStatusPending:
		return to == SwapStatusAccepted || to == SwapStatusDeclined || to == SwapStatusCanceled
	case SwapStatusAccepted:
		return to == SwapStatusCompleted || to == SwapStatusCanceled
	default:
		return false
	}
}
