package payments

import "errors"

// Error taxonomy for the boost payment flow. Handlers map these onto HTTP
// responses; everything else is wrapped with %w so errors.Is keeps working.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidPricingInput = errors.New("invalid pricing input")
	ErrPaymentProvider     = errors.New("payment provider error")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrPersistence         = errors.New("persistence error")
)
