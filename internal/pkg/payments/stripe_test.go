package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestStripeClientCreatePaymentIntent(t *testing.T) {
	var gotForm url.Values
	var gotIdempotencyKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		user, _, ok := r.BasicAuth()
		if !ok || user != "sk_test_123" {
			t.Fatalf("expected basic auth with secret key, got %q", user)
		}
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret","status":"requires_payment_method","amount":400,"currency":"chf"}`))
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_123", srv.URL)
	intent, err := client.CreatePaymentIntent(context.Background(), CreateIntentParams{
		Amount:      400,
		Currency:    "CHF",
		Description: "SwapIt premium boost for 5 days",
		Metadata:    map[string]string{"type": "boost", "item_id": "abc"},
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent returned error: %v", err)
	}

	if intent.ID != "pi_1" || intent.ClientSecret != "pi_1_secret" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if intent.Currency != "CHF" {
		t.Fatalf("expected normalized currency CHF, got %s", intent.Currency)
	}
	if gotIdempotencyKey == "" {
		t.Fatal("expected an Idempotency-Key header")
	}
	if got := gotForm.Get("amount"); got != "400" {
		t.Fatalf("expected amount 400, got %s", got)
	}
	if got := gotForm.Get("currency"); got != "chf" {
		t.Fatalf("expected lowercase currency, got %s", got)
	}
	if got := gotForm.Get("metadata[type]"); got != "boost" {
		t.Fatalf("expected boost metadata, got %s", got)
	}
}

func TestStripeClientMapsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_123", srv.URL)
	_, err := client.CreatePaymentIntent(context.Background(), CreateIntentParams{Amount: 400, Currency: "USD"})
	if !errors.Is(err, ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider, got %v", err)
	}
}

func TestStripeClientRequiresSecretKey(t *testing.T) {
	client := NewStripeClient("", "http://localhost:0")
	if _, err := client.CreatePaymentIntent(context.Background(), CreateIntentParams{Amount: 1, Currency: "USD"}); !errors.Is(err, ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider, got %v", err)
	}
}
