package payments

import (
	"time"

	"github.com/swapit-app/swapit/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payment service.
type Repository interface {
	GetItemByUUID(uuid string) (*models.Item, error)
	CreateBoostPurchase(txn *models.Transaction, boost *models.Boost) error
	GetTransactionByProviderTxnID(providerTxnID string) (*models.Transaction, error)
	UpdateTransactionStatus(providerTxnID, status string, completedAt *time.Time) (*models.Transaction, error)
	ActivateBoostForTransaction(transactionID uint, startsAt time.Time) (*models.Boost, error)
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	CreateNotification(userID uint, notificationType, content string, referenceID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetItemByUUID(uuid string) (*models.Item, error) {
	var item models.Item
	if err := r.db.Where("uuid = ?", uuid).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateBoostPurchase inserts the Transaction and Boost rows and patches the
// item's denormalized boost columns in one database transaction, so the three
// writes cannot partially fail.
func (r *gormRepository) CreateBoostPurchase(txn *models.Transaction, boost *models.Boost) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		boost.TransactionID = &txn.ID
		if err := tx.Create(boost).Error; err != nil {
			return err
		}
		return tx.Model(&models.Item{}).
			Where("id = ?", boost.ItemID).
			Updates(map[string]interface{}{
				"is_boosted":       true,
				"boost_type":       boost.BoostType,
				"boost_expires_at": boost.ExpiresAt,
			}).Error
	})
}

func (r *gormRepository) GetTransactionByProviderTxnID(providerTxnID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Where("provider_txn_id = ?", providerTxnID).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *gormRepository) UpdateTransactionStatus(providerTxnID, status string, completedAt *time.Time) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Where("provider_txn_id = ?", providerTxnID).First(&txn).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}
	if err := r.db.Model(&txn).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// ActivateBoostForTransaction flips the boost active and refreshes the item's
// denormalized boost columns in the same database transaction.
func (r *gormRepository) ActivateBoostForTransaction(transactionID uint, startsAt time.Time) (*models.Boost, error) {
	var boost models.Boost
	if err := r.db.Where("transaction_id = ?", transactionID).First(&boost).Error; err != nil {
		return nil, err
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&boost).Updates(map[string]interface{}{
			"is_active": true,
			"starts_at": startsAt,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Item{}).
			Where("id = ?", boost.ItemID).
			Updates(map[string]interface{}{
				"is_boosted":       true,
				"boost_type":       boost.BoostType,
				"boost_expires_at": boost.ExpiresAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	boost.IsActive = true
	boost.StartsAt = startsAt
	return &boost, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) CreateNotification(userID uint, notificationType, content string, referenceID uint) error {
	return models.CreateNotification(r.db, userID, notificationType, content, referenceID)
}
