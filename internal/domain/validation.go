package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidReasonCode  = errors.New("invalid reason code")
	ErrInvalidKey         = errors.New("invalid idempotency key")
	ErrMetadataTooLarge   = errors.New("metadata size exceeds limit")
)

// Validation constants
const (
	MaxReasonCodeLength     = 64
	MaxIdempotencyKeyLength = 255
	MaxMetadataSize         = 10240 // 10KB
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

// ValidateCurrency validates an ISO 4217 currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateReasonCode validates a transaction reason code.
func ValidateReasonCode(code string) error {
	code = strings.TrimSpace(code)

	if code == "" {
		return fmt.Errorf("%w: reason code cannot be empty", ErrInvalidReasonCode)
	}

	if len(code) > MaxReasonCodeLength {
		return fmt.Errorf("%w: reason code exceeds %d characters", ErrInvalidReasonCode, MaxReasonCodeLength)
	}

	return nil
}

// ValidateIdempotencyKey validates an idempotency key.
func ValidateIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: idempotency key cannot be empty", ErrInvalidKey)
	}

	if len(key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: idempotency key exceeds %d characters", ErrInvalidKey, MaxIdempotencyKeyLength)
	}

	return nil
}

// ValidateMetadata validates metadata size.
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	// Estimate size (rough approximation)
	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, size, MaxMetadataSize)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
