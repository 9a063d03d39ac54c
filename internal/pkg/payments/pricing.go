package payments

import (
	"fmt"
	"math"

	"github.com/swapit-app/swapit/app/models"
)

// Supported checkout currencies.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyCHF = "CHF"
	CurrencyGBP = "GBP"
)

// basePrices maps boost tier x currency to the price of the reference duration
// (5 days), in minor currency units.
var basePrices = map[string]map[string]int64{
	models.BoostTypePremium: {
		CurrencyUSD: 499,
		CurrencyEUR: 459,
		CurrencyCHF: 400,
		CurrencyGBP: 399,
	},
	models.BoostTypeFeatured: {
		CurrencyUSD: 999,
		CurrencyEUR: 919,
		CurrencyCHF: 800,
		CurrencyGBP: 799,
	},
	models.BoostTypeUrgent: {
		CurrencyUSD: 799,
		CurrencyEUR: 739,
		CurrencyCHF: 640,
		CurrencyGBP: 639,
	},
}

// durationMultipliers holds the fixed duration tiers. Durations outside this
// set are priced linearly against the 5-day reference.
var durationMultipliers = map[int]float64{
	1:  0.4,
	3:  0.6,
	5:  1.0,
	7:  1.4,
	14: 2.5,
}

// PriceBoost computes the charge for a boost purchase in minor currency units.
// Unknown tier/currency combinations fail instead of silently defaulting.
func PriceBoost(boostType, currency string, durationDays int) (int64, error) {
	if durationDays <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidPricingInput, durationDays)
	}

	byCurrency, ok := basePrices[boostType]
	if !ok {
		return 0, fmt.Errorf("%w: unknown boost type %q", ErrInvalidPricingInput, boostType)
	}
	base, ok := byCurrency[currency]
	if !ok {
		return 0, fmt.Errorf("%w: unknown currency %q", ErrInvalidPricingInput, currency)
	}

	multiplier, ok := durationMultipliers[durationDays]
	if !ok {
		multiplier = float64(durationDays) / 5.0
	}

	return int64(math.Round(float64(base) * multiplier)), nil
}

// IsSupportedCurrency checks a client-supplied checkout currency.
func IsSupportedCurrency(currency string) bool {
	switch currency {
	case CurrencyUSD, CurrencyEUR, CurrencyCHF, CurrencyGBP:
		return true
	default:
		return false
	}
}
