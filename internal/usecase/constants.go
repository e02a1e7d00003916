package usecase

import "time"

const (
	// DefaultListLimit and MaxListLimit bound list queries.
	DefaultListLimit = 200
	MaxListLimit     = 1000

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
