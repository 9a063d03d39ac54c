package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/swapit-app/swapit/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com"

// StripeClient talks to the Stripe REST API (form-encoded v1 endpoints).
type StripeClient struct {
	secretKey string
	http      *resty.Client
}

// NewStripeClient creates a client for the given API base URL. Tests point
// this at a local server.
func NewStripeClient(secretKey, baseURL string) *StripeClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultStripeAPIBaseURL
	}
	return &StripeClient{
		secretKey: strings.TrimSpace(secretKey),
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(15 * time.Second),
	}
}

// NewStripeClientFromEnv creates a client configured from the environment.
func NewStripeClientFromEnv() *StripeClient {
	return NewStripeClient(
		env.GetEnv("STRIPE_SECRET_KEY", ""),
		env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL),
	)
}

type stripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreatePaymentIntent creates a payment intent for the given amount. Requests
// carry a fresh Idempotency-Key so a transport-level retry cannot double
// charge.
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("%w: STRIPE_SECRET_KEY is not configured", ErrPaymentProvider)
	}

	form := map[string]string{
		"amount":                             strconv.FormatInt(params.Amount, 10),
		"currency":                           strings.ToLower(params.Currency),
		"description":                        params.Description,
		"automatic_payment_methods[enabled]": "true",
	}
	// Stable metadata ordering keeps request logs diffable.
	keys := make([]string, 0, len(params.Metadata))
	for k := range params.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		form[fmt.Sprintf("metadata[%s]", k)] = params.Metadata[k]
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.secretKey, "").
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetFormData(form).
		Post("/v1/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	if resp.IsError() {
		var apiErr stripeErrorResponse
		if jsonErr := json.Unmarshal(resp.Body(), &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrPaymentProvider, apiErr.Error.Message, apiErr.Error.Type)
		}
		return nil, fmt.Errorf("%w: unexpected status %d", ErrPaymentProvider, resp.StatusCode())
	}

	var intent stripeIntentResponse
	if err := json.Unmarshal(resp.Body(), &intent); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrPaymentProvider, err)
	}
	if intent.ID == "" || intent.ClientSecret == "" {
		return nil, fmt.Errorf("%w: response missing intent id or client secret", ErrPaymentProvider)
	}

	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       intent.Status,
		Amount:       intent.Amount,
		Currency:     strings.ToUpper(intent.Currency),
	}, nil
}
