package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/swapit-app/swapit/app/models"
	"gorm.io/gorm"
)

const (
	defaultCurrency     = CurrencyUSD
	defaultDurationDays = 7
	requestSource       = "swapit_api"
)

// Service implements the boost purchase flow: intent creation against the
// payment provider plus local bookkeeping, and the asynchronous webhook
// reconciliation that brings local state in line with the provider's.
type Service struct {
	repo     Repository
	provider Provider
}

// NewService creates a payment service from injected collaborators.
func NewService(repo Repository, provider Provider) *Service {
	return &Service{repo: repo, provider: provider}
}

// NewServiceFromDB creates a payment service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, provider Provider) *Service {
	return NewService(NewRepository(db), provider)
}

// CreateBoostIntent turns an authenticated boost purchase request into a
// provider-side payment intent plus local Transaction/Boost rows. If the
// local writes fail after the provider call succeeded, the client secret is
// still returned: the provider will accept the payment either way, and the
// gap is logged for reconciliation.
func (s *Service) CreateBoostIntent(ctx context.Context, userID uint, in BoostIntentInput) (*BoostIntentResult, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(in.ItemUUID) == "" {
		return nil, fmt.Errorf("%w: itemId is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.BoostType) == "" {
		return nil, fmt.Errorf("%w: boostType is required", ErrInvalidRequest)
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	duration := in.DurationDays
	if duration == 0 {
		duration = defaultDurationDays
	}

	item, err := s.repo.GetItemByUUID(in.ItemUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %s not found", ErrInvalidRequest, in.ItemUUID)
		}
		return nil, fmt.Errorf("%w: item lookup: %v", ErrPersistence, err)
	}

	amount, err := PriceBoost(in.BoostType, currency, duration)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("SwapIt %s boost for %d days", in.BoostType, duration)
	metadata := map[string]string{
		"type":          "boost",
		"user_id":       strconv.FormatUint(uint64(userID), 10),
		"item_id":       item.UUID,
		"boost_type":    in.BoostType,
		"duration_days": strconv.Itoa(duration),
		"source":        requestSource,
	}
	for k, v := range in.Metadata {
		if _, reserved := metadata[k]; !reserved {
			metadata[k] = v
		}
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, CreateIntentParams{
		Amount:      amount,
		Currency:    currency,
		Description: description,
		Metadata:    metadata,
	})
	if err != nil {
		// No local writes before or after a failed provider call.
		return nil, err
	}

	metadataJSON, _ := json.Marshal(metadata)
	now := time.Now()
	txn := &models.Transaction{
		UserID:        userID,
		ItemID:        &item.ID,
		Provider:      models.TransactionProviderStripe,
		ProviderTxnID: intent.ID,
		Amount:        amount,
		Currency:      currency,
		Status:        models.TransactionStatusPending,
		Description:   description,
		MetadataJSON:  string(metadataJSON),
	}
	boost := &models.Boost{
		ItemID:       item.ID,
		UserID:       userID,
		BoostType:    in.BoostType,
		DurationDays: duration,
		AmountPaid:   amount,
		Currency:     currency,
		StartsAt:     now,
		ExpiresAt:    now.AddDate(0, 0, duration),
		IsActive:     true, // optimistic activation, reconciled by the webhook
	}

	result := &BoostIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount,
		Currency:        currency,
		Description:     description,
	}

	if err := s.repo.CreateBoostPurchase(txn, boost); err != nil {
		// The provider intent exists and the client can still pay; local
		// bookkeeping is reconciled from the webhook log.
		log.Printf("payments: %v: boost purchase bookkeeping failed for intent %s: %v", ErrPersistence, intent.ID, err)
		return result, nil
	}

	result.TransactionID = txn.ID
	return result, nil
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// RecordWebhookEvent persists webhook payloads idempotently. The returned
// bool is false when the event id was already recorded; duplicates must not
// be dispatched again.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// HandleEvent transitions local Transaction/Boost state for one provider
// event. Events for unknown transactions and unhandled event types are logged
// and acknowledged without error, matching what the provider expects.
func (s *Service) HandleEvent(ctx context.Context, ev *Event) error {
	_ = ctx
	switch ev.Type {
	case EventPaymentIntentSucceeded:
		return s.handlePaymentSucceeded(ev)
	case EventPaymentIntentFailed:
		return s.handlePaymentFailed(ev)
	case EventPaymentIntentCanceled:
		return s.handlePaymentCanceled(ev)
	case EventPaymentMethodAttached:
		log.Printf("payments: payment method attached (event %s), no state change", ev.ID)
		return nil
	default:
		log.Printf("payments: ignoring event %s of type %s", ev.ID, ev.Type)
		return nil
	}
}

// alreadyReconciled reports whether the transaction reached a terminal status
// in an earlier delivery. Event-id dedup catches exact redeliveries; this
// guard catches the provider re-announcing the same intent under a fresh
// event id, which must not flip the status or re-fire notifications.
func (s *Service) alreadyReconciled(providerTxnID string) bool {
	txn, err := s.repo.GetTransactionByProviderTxnID(providerTxnID)
	return err == nil && txn.IsTerminal()
}

func (s *Service) handlePaymentSucceeded(ev *Event) error {
	if s.alreadyReconciled(ev.PaymentIntentID) {
		log.Printf("payments: intent %s already reconciled, ignoring event %s", ev.PaymentIntentID, ev.ID)
		return nil
	}

	now := time.Now()
	txn, err := s.repo.UpdateTransactionStatus(ev.PaymentIntentID, models.TransactionStatusSucceeded, &now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The webhook can outrun the creator's own writes; the raw event
			// stays in the log for manual investigation.
			log.Printf("payments: succeeded event %s references unknown intent %s", ev.ID, ev.PaymentIntentID)
			return nil
		}
		return fmt.Errorf("update transaction %s: %w", ev.PaymentIntentID, err)
	}

	if !ev.IsBoostPayment() {
		return nil
	}

	boost, err := s.repo.ActivateBoostForTransaction(txn.ID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("payments: no boost row for transaction %d (intent %s)", txn.ID, ev.PaymentIntentID)
			return nil
		}
		return fmt.Errorf("activate boost for transaction %d: %w", txn.ID, err)
	}

	content := fmt.Sprintf("Your %s boost is now active until %s.", boost.BoostType, boost.ExpiresAt.Format("Jan 2, 2006"))
	if err := s.repo.CreateNotification(txn.UserID, models.NotificationTypePayment, content, txn.ID); err != nil {
		log.Printf("payments: failed to notify user %d about boost activation: %v", txn.UserID, err)
	}
	return nil
}

func (s *Service) handlePaymentFailed(ev *Event) error {
	if s.alreadyReconciled(ev.PaymentIntentID) {
		log.Printf("payments: intent %s already reconciled, ignoring event %s", ev.PaymentIntentID, ev.ID)
		return nil
	}

	txn, err := s.repo.UpdateTransactionStatus(ev.PaymentIntentID, models.TransactionStatusFailed, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("payments: failed event %s references unknown intent %s", ev.ID, ev.PaymentIntentID)
			return nil
		}
		return fmt.Errorf("update transaction %s: %w", ev.PaymentIntentID, err)
	}

	content := "Your boost payment failed."
	if ev.FailureMessage != "" {
		content = fmt.Sprintf("Your boost payment failed: %s", ev.FailureMessage)
	}
	if err := s.repo.CreateNotification(txn.UserID, models.NotificationTypePayment, content, txn.ID); err != nil {
		log.Printf("payments: failed to notify user %d about payment failure: %v", txn.UserID, err)
	}
	return nil
}

func (s *Service) handlePaymentCanceled(ev *Event) error {
	if s.alreadyReconciled(ev.PaymentIntentID) {
		log.Printf("payments: intent %s already reconciled, ignoring event %s", ev.PaymentIntentID, ev.ID)
		return nil
	}

	txn, err := s.repo.UpdateTransactionStatus(ev.PaymentIntentID, models.TransactionStatusCanceled, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("payments: canceled event %s references unknown intent %s", ev.ID, ev.PaymentIntentID)
			return nil
		}
		return fmt.Errorf("update transaction %s: %w", ev.PaymentIntentID, err)
	}

	log.Printf("payments: intent %s canceled by user or provider", txn.ProviderTxnID)
	return nil
}
