package usecase

import "time"

const (
	// IdempotencyKeyTTL is how long processed idempotency keys are kept in
	// the advisory fast-path store.
	IdempotencyKeyTTL = 24 * time.Hour
)
