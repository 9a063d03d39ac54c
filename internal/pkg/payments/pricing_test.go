package payments

import (
	"errors"
	"math"
	"testing"

	"github.com/swapit-app/swapit/app/models"
)

func TestPriceBoostFixedDurations(t *testing.T) {
	multipliers := map[int]float64{1: 0.4, 3: 0.6, 5: 1.0, 7: 1.4, 14: 2.5}

	for boostType, byCurrency := range basePrices {
		for currency, base := range byCurrency {
			for days, mult := range multipliers {
				got, err := PriceBoost(boostType, currency, days)
				if err != nil {
					t.Fatalf("PriceBoost(%s, %s, %d) returned error: %v", boostType, currency, days, err)
				}
				want := int64(math.Round(float64(base) * mult))
				if got != want {
					t.Fatalf("PriceBoost(%s, %s, %d) = %d, want %d", boostType, currency, days, got, want)
				}
			}
		}
	}
}

func TestPriceBoostReferenceScenarios(t *testing.T) {
	tests := []struct {
		boostType string
		currency  string
		days      int
		want      int64
	}{
		{models.BoostTypePremium, CurrencyCHF, 5, 400},
		{models.BoostTypeUrgent, CurrencyUSD, 1, 320}, // round(799 * 0.4) = round(319.6)
		{models.BoostTypePremium, CurrencyUSD, 7, 699},
		{models.BoostTypeFeatured, CurrencyEUR, 14, 2298},
	}

	for _, tt := range tests {
		got, err := PriceBoost(tt.boostType, tt.currency, tt.days)
		if err != nil {
			t.Fatalf("PriceBoost(%s, %s, %d) returned error: %v", tt.boostType, tt.currency, tt.days, err)
		}
		if got != tt.want {
			t.Fatalf("PriceBoost(%s, %s, %d) = %d, want %d", tt.boostType, tt.currency, tt.days, got, tt.want)
		}
	}
}

func TestPriceBoostLinearFallback(t *testing.T) {
	// 10 days is not a fixed tier: base * 10/5
	got, err := PriceBoost(models.BoostTypePremium, CurrencyUSD, 10)
	if err != nil {
		t.Fatalf("PriceBoost fallback returned error: %v", err)
	}
	if got != 998 {
		t.Fatalf("PriceBoost(premium, USD, 10) = %d, want 998", got)
	}

	// 2 days rounds to nearest minor unit: 499 * 2/5 = 199.6
	got, err = PriceBoost(models.BoostTypePremium, CurrencyUSD, 2)
	if err != nil {
		t.Fatalf("PriceBoost fallback returned error: %v", err)
	}
	if got != 200 {
		t.Fatalf("PriceBoost(premium, USD, 2) = %d, want 200", got)
	}
}

func TestPriceBoostInvalidInput(t *testing.T) {
	cases := []struct {
		name      string
		boostType string
		currency  string
		days      int
	}{
		{"unknown tier", "mega", CurrencyUSD, 5},
		{"unknown currency", models.BoostTypePremium, "JPY", 5},
		{"zero duration", models.BoostTypePremium, CurrencyUSD, 0},
		{"negative duration", models.BoostTypePremium, CurrencyUSD, -3},
	}

	for _, tt := range cases {
		if _, err := PriceBoost(tt.boostType, tt.currency, tt.days); !errors.Is(err, ErrInvalidPricingInput) {
			t.Fatalf("%s: expected ErrInvalidPricingInput, got %v", tt.name, err)
		}
	}
}

func TestIsSupportedCurrency(t *testing.T) {
	for _, c := range []string{CurrencyUSD, CurrencyEUR, CurrencyCHF, CurrencyGBP} {
		if !IsSupportedCurrency(c) {
			t.Fatalf("expected %s to be supported", c)
		}
	}
	if IsSupportedCurrency("JPY") {
		t.Fatal("expected JPY to be unsupported")
	}
}
