package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CreateIntentParams is the provider-agnostic input for creating a payment
// intent. Amount is in minor currency units.
type CreateIntentParams struct {
	Amount      int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// PaymentIntent is the provider's view of a created intent. ClientSecret is
// handed to clients so they can complete the payment with the provider's
// hosted form.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// Provider creates payment intents with the external payment provider.
type Provider interface {
	CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error)
}

// BoostIntentInput is the validated body of a boost purchase request. The
// caller identity is resolved from the bearer credential, never from the body.
type BoostIntentInput struct {
	ItemUUID     string
	BoostType    string
	Currency     string
	DurationDays int
	Metadata     map[string]string
}

// BoostIntentResult is returned to the client after intent creation.
// TransactionID is zero when local bookkeeping failed after the provider call
// succeeded (the client secret is still valid in that case).
type BoostIntentResult struct {
	ClientSecret    string
	PaymentIntentID string
	TransactionID   uint
	Amount          int64
	Currency        string
	Description     string
}

// Provider webhook event types the reconciler dispatches on.
const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
	EventPaymentIntentCanceled  = "payment_intent.canceled"
	EventPaymentMethodAttached  = "payment_method.attached"
)

// Event is the parsed, provider-neutral shape of a webhook payload.
type Event struct {
	ID              string
	Type            string
	PaymentIntentID string
	FailureMessage  string
	Metadata        map[string]string
}

// IsBoostPayment reports whether the intent's metadata marks it as a boost
// purchase.
func (e *Event) IsBoostPayment() bool {
	return e.Metadata["type"] == "boost"
}

type stripeEventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID               string            `json:"id"`
			Metadata         map[string]string `json:"metadata"`
			LastPaymentError *struct {
				Message string `json:"message"`
			} `json:"last_payment_error"`
		} `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a raw Stripe webhook body into an Event.
func ParseEvent(payload []byte) (*Event, error) {
	var env stripeEventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	if strings.TrimSpace(env.ID) == "" || strings.TrimSpace(env.Type) == "" {
		return nil, fmt.Errorf("webhook payload missing id or type")
	}

	ev := &Event{
		ID:              env.ID,
		Type:            env.Type,
		PaymentIntentID: env.Data.Object.ID,
		Metadata:        env.Data.Object.Metadata,
	}
	if ev.Metadata == nil {
		ev.Metadata = map[string]string{}
	}
	if env.Data.Object.LastPaymentError != nil {
		ev.FailureMessage = env.Data.Object.LastPaymentError.Message
	}
	return ev, nil
}
