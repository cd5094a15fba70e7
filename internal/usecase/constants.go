package usecase

import "time"

const (
	// DefaultTradeTimeout bounds lock waits and storage calls for one trade.
	DefaultTradeTimeout = 10 * time.Second

	// DefaultPageSize is the trade log page fetched per storage round trip.
	DefaultPageSize = 100

	// MaxListLimit caps listings returned to callers.
	MaxListLimit = 1000

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	inventoryCachePrefix = "inventory:"
)
