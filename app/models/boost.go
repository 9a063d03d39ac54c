package models

import "time"

const (
	BoostTypePremium  = "premium"
	BoostTypeFeatured = "featured"
	BoostTypeUrgent   = "urgent"
)

// Boost represents a paid visibility promotion for one item. It is created
// alongside its Transaction with is_active already true (the UX keeps the boost
// visible immediately); the webhook reconciler re-asserts activity once the
// provider confirms payment.
type Boost struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ItemID        uint      `gorm:"not null;index" json:"item_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	TransactionID *uint     `gorm:"index" json:"transaction_id,omitempty"`
	BoostType     string    `gorm:"type:varchar(20);not null" json:"boost_type" validate:"oneof=premium featured urgent"`
	DurationDays  int       `gorm:"not null" json:"duration_days"`
	AmountPaid    int64     `gorm:"not null" json:"amount_paid"` // minor currency units
	Currency      string    `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	StartsAt      time.Time `gorm:"type:timestamp;not null" json:"starts_at"`
	ExpiresAt     time.Time `gorm:"type:timestamp;not null;index" json:"expires_at"`
	IsActive      bool      `gorm:"default:false;index" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Expired reports whether the boost window has passed at the given time.
// Expiry is derived at read time; no row is flipped when the window closes.
func (b *Boost) Expired(now time.Time) bool {
	return now.After(b.ExpiresAt)
}

// IsValidBoostType checks a client-supplied boost tier.
func IsValidBoostType(t string) bool {
	switch t {
	case BoostTypePremium, BoostTypeFeatured, BoostTypeUrgent:
		return true
	default:
		return false
	}
}
