package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database
	// transaction. This prevents long-running transactions from blocking
	// tables.
	DefaultTransactionTimeout = 10 * time.Second

	// MaxPaymentAmount caps a single repayment transaction (minor units).
	MaxPaymentAmount = int64(1_000_000_000_000)

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// SummaryCacheTTL bounds staleness of the cached account summary between
	// mutations (every mutation also invalidates the key).
	SummaryCacheTTL = 5 * time.Minute
)
