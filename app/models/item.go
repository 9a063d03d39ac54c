package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ItemStatusAvailable = "available"
	ItemStatusReserved  = "reserved"
	ItemStatusSwapped   = "swapped"
	ItemStatusGivenAway = "given_away"
)

// Item is a thing offered for swapping or giving away. The boost columns are a
// denormalized copy of the item's currently active Boost row, kept in sync by
// the payment flow so feed queries never have to join boosts.
type Item struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UUID        string `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title       string `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=3,max=200"`
	Description string `gorm:"type:text" json:"description" validate:"max=5000"`
	Category    string `gorm:"type:varchar(50);index" json:"category" validate:"max=50"`
	Condition   string `gorm:"type:varchar(20)" json:"condition" validate:"omitempty,oneof=new like_new good fair worn"`
	City        string `gorm:"type:varchar(100);index" json:"city" validate:"max=100"`
	ImageURL    string `gorm:"type:varchar(500)" json:"image_url" validate:"max=500"`
	GiveAway    bool   `gorm:"default:false" json:"give_away"`
	Status      string `gorm:"type:varchar(20);default:'available';index" json:"status" validate:"oneof=available reserved swapped given_away"`
	ViewCount   int64  `gorm:"default:0" json:"view_count"`

	// Denormalized boost state (see Boost)
	IsBoosted      bool       `gorm:"default:false;index" json:"is_boosted"`
	BoostType      string     `gorm:"type:varchar(20);default:''" json:"boost_type,omitempty"`
	BoostExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"boost_expires_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == "" {
		i.UUID = uuid.NewString()
	}
	return nil
}

func (i *Item) Validate() error {
	v := validator.New()

	return v.Struct(i)
}

// HasActiveBoost reports whether the denormalized boost is still in effect at
// the given time. Expiry is a read-time fact, there is no background sweeper.
func (i *Item) HasActiveBoost(now time.Time) bool {
	return i.IsBoosted && i.BoostExpiresAt != nil && i.BoostExpiresAt.After(now)
}
