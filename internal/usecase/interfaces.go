package usecase

import (
	"context"
	"time"

	"github.com/iho/barter/internal/domain"
)

// AccountRepository defines data access for account inventories.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIDsForUpdate loads and locks accounts in ascending ID order.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// Save writes the account's inventory and version inside tx.
	Save(ctx context.Context, tx Transaction, account *domain.Account) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TradeLogRepository defines append-only data access for trade records.
type TradeLogRepository interface {
	// Append assigns the next sequence number to record and stores it inside tx.
	Append(ctx context.Context, tx Transaction, record *domain.TradeRecord) error
	// List returns up to filter.Limit records after filter.AfterSequence, ascending.
	List(ctx context.Context, filter domain.TradeFilter) ([]*domain.TradeRecord, error)
	// LastSequence returns the highest sequence appended so far, or zero.
	LastSequence(ctx context.Context) (int64, error)
}

// PresenceStore keeps the last heartbeat per account.
type PresenceStore interface {
	// Touch records at as last-seen unless a newer timestamp is already stored.
	Touch(ctx context.Context, accountID string, at time.Time) error
	LastSeen(ctx context.Context, accountID string) (time.Time, bool, error)
	ListSince(ctx context.Context, cutoff time.Time) ([]domain.PresenceEntry, error)
	EvictBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// AccountLocker serializes access to accounts inside the process.
type AccountLocker interface {
	// Lock acquires every id in a fixed global order and returns the release func.
	Lock(ctx context.Context, ids ...string) (func(), error)
}

// Retrier reruns an operation whose failure left no visible effect.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claim so the request may be retried.
	Release(ctx context.Context, key string) error
}

// Metrics receives trade and presence observations.
type Metrics interface {
	TradeCommitted(items int, duration time.Duration)
	TradeRejected(reason domain.ErrorCode)
	TradeFailed(code domain.ErrorCode)
	Heartbeat()
	OnlineAccounts(n int)
	PresenceEvicted(n int)
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error { return operation() }

type nopMetrics struct{}

func (nopMetrics) TradeCommitted(int, time.Duration) {}
func (nopMetrics) TradeRejected(domain.ErrorCode)    {}
func (nopMetrics) TradeFailed(domain.ErrorCode)      {}
func (nopMetrics) Heartbeat()                        {}
func (nopMetrics) OnlineAccounts(int)                {}
func (nopMetrics) PresenceEvicted(int)               {}
