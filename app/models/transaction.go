package models

import "time"

const (
	TransactionProviderStripe = "stripe"
)

const (
	TransactionStatusPending    = "pending"
	TransactionStatusProcessing = "processing"
	TransactionStatusSucceeded  = "succeeded"
	TransactionStatusFailed     = "failed"
	TransactionStatusCanceled   = "canceled"
	TransactionStatusRefunded   = "refunded"
)

// Transaction records one payment attempt. Rows are created in pending state by
// the intent creator and only ever mutated by the webhook reconciler; the
// application never deletes them.
type Transaction struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	ItemID        *uint      `gorm:"index" json:"item_id,omitempty"`
	Provider      string     `gorm:"type:varchar(20);not null;default:'stripe'" json:"provider"`
	ProviderTxnID string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"provider_txn_id"`
	Amount        int64      `gorm:"not null" json:"amount"` // minor currency units
	Currency      string     `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Description   string     `gorm:"type:varchar(255)" json:"description"`
	MetadataJSON  string     `gorm:"type:longtext" json:"metadata_json,omitempty"`
	CompletedAt   *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the transaction reached a final provider status.
func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case TransactionStatusSucceeded, TransactionStatusFailed, TransactionStatusCanceled, TransactionStatusRefunded:
		return true
	default:
		return false
	}
}
