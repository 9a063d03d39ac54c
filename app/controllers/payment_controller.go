package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/swapit-app/swapit/app/models"
	"github.com/swapit-app/swapit/internal/pkg/payments"
	"github.com/swapit-app/swapit/internal/pkg/usercontext"
)

// BoostPurchaser creates provider payment intents for boost purchases.
type BoostPurchaser interface {
	CreateBoostIntent(ctx context.Context, userID uint, in payments.BoostIntentInput) (*payments.BoostIntentResult, error)
}

// WebhookProcessor reconciles local payment state from provider events.
type WebhookProcessor interface {
	RecordWebhookEvent(ctx context.Context, in payments.WebhookEventInput) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error
	HandleEvent(ctx context.Context, ev *payments.Event) error
}

type createIntentRequest struct {
	Type      string            `json:"type"`
	ItemID    string            `json:"itemId"`
	BoostType string            `json:"boostType"`
	Currency  string            `json:"currency"`
	Duration  int               `json:"duration"`
	Metadata  map[string]string `json:"metadata"`
}

// HandleCreateBoostIntent turns an authenticated boost purchase request into a
// provider payment intent plus local bookkeeping.
// Security: bearer token required via router middleware.
func HandleCreateBoostIntent(svc BoostPurchaser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := usercontext.GetUserContext(c)
		if !user.IsLoggedIn {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized", "details": "Missing or invalid authentication", "success": false,
			})
		}

		var req createIntentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid_request", "details": "Malformed JSON body", "success": false,
			})
		}
		if req.Type != "" && req.Type != "boost" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid_request", "details": "Unsupported purchase type", "success": false,
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := svc.CreateBoostIntent(ctx, user.UserID, payments.BoostIntentInput{
			ItemUUID:     strings.TrimSpace(req.ItemID),
			BoostType:    strings.TrimSpace(req.BoostType),
			Currency:     req.Currency,
			DurationDays: req.Duration,
			Metadata:     req.Metadata,
		})
		if err != nil {
			return boostIntentError(c, err)
		}

		return c.JSON(fiber.Map{
			"clientSecret":    result.ClientSecret,
			"paymentIntentId": result.PaymentIntentID,
			"transactionId":   result.TransactionID,
			"amount":          result.Amount,
			"currency":        result.Currency,
			"description":     result.Description,
			"success":         true,
		})
	}
}

func boostIntentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, payments.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized", "details": err.Error(), "success": false,
		})
	case errors.Is(err, payments.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_request", "details": err.Error(), "success": false,
		})
	case errors.Is(err, payments.ErrInvalidPricingInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_pricing_input", "details": err.Error(), "success": false,
		})
	case errors.Is(err, payments.ErrPaymentProvider):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "payment_provider_error", "details": err.Error(), "success": false,
		})
	default:
		log.Printf("boost intent creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_server_error", "details": "Unexpected error", "success": false,
		})
	}
}

// HandleStripeWebhook ingests provider-pushed payment events. The provider
// expects an acknowledgement for everything it delivered, so dispatch failures
// are logged and the event is still acked; only a bad signature is rejected.
func HandleStripeWebhook(svc WebhookProcessor, webhookSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawBody := append([]byte(nil), c.BodyRaw()...)
		signature := strings.TrimSpace(c.Get("Stripe-Signature"))

		if !payments.VerifyStripeWebhookSignature(rawBody, signature, webhookSecret, time.Now()) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		ev, parseErr := payments.ParseEvent(rawBody)
		eventID := ""
		eventType := ""
		if parseErr == nil {
			eventID = ev.ID
			eventType = ev.Type
		}

		created, stored, recordErr := svc.RecordWebhookEvent(ctx, payments.WebhookEventInput{
			Provider:        models.TransactionProviderStripe,
			ProviderEventID: eventID,
			EventType:       eventType,
			PayloadJSON:     string(rawBody),
			SignatureValid:  true,
		})
		if recordErr != nil {
			// Persisting the log is best-effort and must not block processing.
			log.Printf("webhook event persist failed: %v", recordErr)
		}
		if recordErr == nil && !created {
			return c.JSON(fiber.Map{"received": true, "duplicate": true})
		}

		if parseErr != nil {
			if stored != nil {
				_ = svc.MarkWebhookProcessed(ctx, stored.ID, parseErr)
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		}

		dispatchErr := svc.HandleEvent(ctx, ev)
		if stored != nil {
			_ = svc.MarkWebhookProcessed(ctx, stored.ID, dispatchErr)
		}
		if dispatchErr != nil {
			// Acked anyway: the provider will not redeliver, the event log
			// keeps the failure for manual reconciliation.
			log.Printf("webhook dispatch failed for event %s: %v", eventID, dispatchErr)
		}

		return c.JSON(fiber.Map{"received": true})
	}
}
