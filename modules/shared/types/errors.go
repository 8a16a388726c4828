package types

import "errors"

// Sentinel errors for common validation failures.
// Define errors in the types package where the validated types live.
var (
	ErrInvalidID        = errors.New("invalid identifier format")
	ErrCurrencyRequired = errors.New("currency is required")
	ErrCurrencyInvalid  = errors.New("currency must be 3-letter ISO code")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrAmountOverflow   = errors.New("amount out of range")
)
