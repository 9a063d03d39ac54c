package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapit-app/swapit/app/models"
	"github.com/swapit-app/swapit/internal/pkg/payments"
	"github.com/swapit-app/swapit/internal/pkg/usercontext"
)

type fakePurchaser struct {
	lastUserID uint
	lastInput  payments.BoostIntentInput
	result     *payments.BoostIntentResult
	err        error
}

func (f *fakePurchaser) CreateBoostIntent(_ context.Context, userID uint, in payments.BoostIntentInput) (*payments.BoostIntentResult, error) {
	f.lastUserID = userID
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeWebhookProcessor struct {
	recorded     []payments.WebhookEventInput
	storedEvents map[string]*models.PaymentWebhookEvent
	recordErr    error
	handled      []*payments.Event
	handleErr    error
	processed    map[uint]string
	nextEventID  uint
}

func newFakeWebhookProcessor() *fakeWebhookProcessor {
	return &fakeWebhookProcessor{
		storedEvents: make(map[string]*models.PaymentWebhookEvent),
		processed:    make(map[uint]string),
	}
}

func (f *fakeWebhookProcessor) RecordWebhookEvent(_ context.Context, in payments.WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	f.recorded = append(f.recorded, in)
	if f.recordErr != nil {
		return false, nil, f.recordErr
	}
	if existing, ok := f.storedEvents[in.ProviderEventID]; ok {
		return false, existing, nil
	}
	f.nextEventID++
	event := &models.PaymentWebhookEvent{
		Provider:        in.Provider,
		ProviderEventID: in.ProviderEventID,
		EventType:       in.EventType,
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	event.ID = f.nextEventID
	f.storedEvents[in.ProviderEventID] = event
	return true, event, nil
}

func (f *fakeWebhookProcessor) MarkWebhookProcessed(_ context.Context, webhookEventID uint, processingErr error) error {
	msg := ""
	if processingErr != nil {
		msg = processingErr.Error()
	}
	f.processed[webhookEventID] = msg
	return nil
}

func (f *fakeWebhookProcessor) HandleEvent(_ context.Context, ev *payments.Event) error {
	f.handled = append(f.handled, ev)
	return f.handleErr
}

func newIntentTestApp(svc BoostPurchaser, user *usercontext.UserContext) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("USER_CONTEXT", *user)
		}
		return c.Next()
	})
	app.Post("/api/v1/payments/intents", HandleCreateBoostIntent(svc))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHandleCreateBoostIntentRequiresAuth(t *testing.T) {
	svc := &fakePurchaser{}
	app := newIntentTestApp(svc, nil)

	resp := postJSON(t, app, "/api/v1/payments/intents", fiber.Map{
		"type": "boost", "itemId": "item-uuid", "boostType": "premium",
	})

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "unauthorized", body["error"])
	assert.Equal(t, false, body["success"])
	assert.Zero(t, svc.lastUserID)
}

func TestHandleCreateBoostIntentHappyPath(t *testing.T) {
	svc := &fakePurchaser{result: &payments.BoostIntentResult{
		ClientSecret:    "pi_123_secret_abc",
		PaymentIntentID: "pi_123",
		TransactionID:   42,
		Amount:          400,
		Currency:        "CHF",
		Description:     "Premium boost for 5 days",
	}}
	user := &usercontext.UserContext{UserID: 7, Username: "mara", IsLoggedIn: true}
	app := newIntentTestApp(svc, user)

	resp := postJSON(t, app, "/api/v1/payments/intents", fiber.Map{
		"type":      "boost",
		"itemId":    "29cbe391-0f06-4a6e-9a61-0a4a51ec7e21",
		"boostType": "premium",
		"currency":  "chf",
		"duration":  5,
		"metadata":  fiber.Map{"campaign": "autumn"},
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "pi_123_secret_abc", body["clientSecret"])
	assert.Equal(t, "pi_123", body["paymentIntentId"])
	assert.Equal(t, float64(42), body["transactionId"])
	assert.Equal(t, float64(400), body["amount"])
	assert.Equal(t, "CHF", body["currency"])
	assert.Equal(t, true, body["success"])

	assert.Equal(t, uint(7), svc.lastUserID)
	assert.Equal(t, "29cbe391-0f06-4a6e-9a61-0a4a51ec7e21", svc.lastInput.ItemUUID)
	assert.Equal(t, "premium", svc.lastInput.BoostType)
	assert.Equal(t, 5, svc.lastInput.DurationDays)
	assert.Equal(t, "autumn", svc.lastInput.Metadata["campaign"])
}

func TestHandleCreateBoostIntentRejectsUnknownType(t *testing.T) {
	svc := &fakePurchaser{}
	user := &usercontext.UserContext{UserID: 7, IsLoggedIn: true}
	app := newIntentTestApp(svc, user)

	resp := postJSON(t, app, "/api/v1/payments/intents", fiber.Map{
		"type": "subscription", "itemId": "item-uuid", "boostType": "premium",
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid_request", body["error"])
	assert.Zero(t, svc.lastUserID)
}

func TestHandleCreateBoostIntentErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"invalid request", fmt.Errorf("%w: item_id is required", payments.ErrInvalidRequest), fiber.StatusBadRequest, "invalid_request"},
		{"invalid pricing", fmt.Errorf("%w: unknown boost type", payments.ErrInvalidPricingInput), fiber.StatusBadRequest, "invalid_pricing_input"},
		{"provider down", fmt.Errorf("%w: status 503", payments.ErrPaymentProvider), fiber.StatusBadGateway, "payment_provider_error"},
		{"unauthorized", payments.ErrUnauthorized, fiber.StatusUnauthorized, "unauthorized"},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError, "internal_server_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakePurchaser{err: tc.err}
			user := &usercontext.UserContext{UserID: 7, IsLoggedIn: true}
			app := newIntentTestApp(svc, user)

			resp := postJSON(t, app, "/api/v1/payments/intents", fiber.Map{
				"type": "boost", "itemId": "item-uuid", "boostType": "premium",
			})

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, tc.wantError, body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

const testWebhookSecret = "whsec_test_secret"

func signWebhookPayload(payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookTestApp(svc WebhookProcessor) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/payments/webhook", HandleStripeWebhook(svc, testWebhookSecret))
	return app
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func succeededEventPayload(eventID, intentID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": %q, "metadata": {"type": "boost", "item_id": "item-uuid"}}}
	}`, eventID, intentID))
}

func TestHandleStripeWebhookRejectsBadSignature(t *testing.T) {
	svc := newFakeWebhookProcessor()
	app := newWebhookTestApp(svc)
	payload := succeededEventPayload("evt_1", "pi_1")

	resp := postWebhook(t, app, payload, "t=12345,v1=deadbeef")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid_signature", body["error"])
	assert.Empty(t, svc.recorded, "unverified payloads must not be persisted")
	assert.Empty(t, svc.handled)
}

func TestHandleStripeWebhookMissingSignature(t *testing.T) {
	svc := newFakeWebhookProcessor()
	app := newWebhookTestApp(svc)

	resp := postWebhook(t, app, succeededEventPayload("evt_1", "pi_1"), "")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, svc.recorded)
}

func TestHandleStripeWebhookDispatchesEvent(t *testing.T) {
	svc := newFakeWebhookProcessor()
	app := newWebhookTestApp(svc)
	payload := succeededEventPayload("evt_1", "pi_1")

	resp := postWebhook(t, app, payload, signWebhookPayload(payload, time.Now()))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["received"])

	require.Len(t, svc.recorded, 1)
	assert.Equal(t, "evt_1", svc.recorded[0].ProviderEventID)
	assert.Equal(t, "payment_intent.succeeded", svc.recorded[0].EventType)
	assert.True(t, svc.recorded[0].SignatureValid)

	require.Len(t, svc.handled, 1)
	assert.Equal(t, "pi_1", svc.handled[0].PaymentIntentID)
	assert.Equal(t, "", svc.processed[1], "event marked processed without error")
}

func TestHandleStripeWebhookDuplicateEventShortCircuits(t *testing.T) {
	svc := newFakeWebhookProcessor()
	app := newWebhookTestApp(svc)
	payload := succeededEventPayload("evt_dup", "pi_1")
	signature := signWebhookPayload(payload, time.Now())

	first := postWebhook(t, app, payload, signature)
	assert.Equal(t, fiber.StatusOK, first.StatusCode)
	first.Body.Close()

	second := postWebhook(t, app, payload, signature)
	assert.Equal(t, fiber.StatusOK, second.StatusCode)
	body := decodeBody(t, second)
	assert.Equal(t, true, body["received"])
	assert.Equal(t, true, body["duplicate"])

	assert.Len(t, svc.handled, 1, "duplicate must not be dispatched again")
}

func TestHandleStripeWebhookMalformedPayload(t *testing.T) {
	svc := newFakeWebhookProcessor()
	app := newWebhookTestApp(svc)
	payload := []byte(`{"id": "evt_broken"`)

	resp := postWebhook(t, app, payload, signWebhookPayload(payload, time.Now()))

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid_payload", body["error"])
	assert.Empty(t, svc.handled)
	require.Len(t, svc.processed, 1, "malformed payloads are still logged and marked")
}

func TestHandleStripeWebhookAcksDispatchFailures(t *testing.T) {
	svc := newFakeWebhookProcessor()
	svc.handleErr = errors.New("db unavailable")
	app := newWebhookTestApp(svc)
	payload := succeededEventPayload("evt_fail", "pi_1")

	resp := postWebhook(t, app, payload, signWebhookPayload(payload, time.Now()))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["received"])
	assert.Equal(t, "db unavailable", svc.processed[1])
}

func TestHandleStripeWebhookProcessesWhenPersistFails(t *testing.T) {
	svc := newFakeWebhookProcessor()
	svc.recordErr = errors.New("mysql down")
	app := newWebhookTestApp(svc)
	payload := succeededEventPayload("evt_nolog", "pi_1")

	resp := postWebhook(t, app, payload, signWebhookPayload(payload, time.Now()))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, svc.handled, 1, "persistence outage must not drop the event")
}

func TestHandleStripeWebhookIgnoresUnknownEventType(t *testing.T) {
	svc := newFakeWebhookProcessor()
	app := newWebhookTestApp(svc)
	payload := []byte(`{"id": "evt_pm", "type": "payment_method.attached", "data": {"object": {"id": "pm_1"}}}`)

	resp := postWebhook(t, app, payload, signWebhookPayload(payload, time.Now()))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, svc.handled, 1)
	assert.Equal(t, "payment_method.attached", svc.handled[0].Type)
	assert.True(t, strings.HasPrefix(svc.recorded[0].ProviderEventID, "evt_"))
}
