package domain

import "errors"

var (
	// Structural validation errors, detected before any storage access.
	ErrInvalidAmount             = errors.New("transaction amount must be positive")
	ErrMissingDestinationAccount = errors.New("missing destination account for credit")
	ErrMissingSourceAccount      = errors.New("missing source account for debit")
	ErrMissingAccountForTransfer = errors.New("both source and destination accounts required for transfer")
	ErrSameAccountTransfer       = errors.New("cannot transfer to same account")

	// Business-rule rejections.
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrCurrencyMismatch     = errors.New("cannot transfer between different currencies")
	ErrIdempotencyViolation = errors.New("transaction already processed")
	ErrNotReversible        = errors.New("transaction cannot be reversed")
	ErrInvalidDirection     = errors.New("adjustment direction must be Debit or Credit")

	// Lookup errors.
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)
