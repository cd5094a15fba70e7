package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/barter/internal/domain"
)

// LedgerUseCase owns every mutation of account inventories.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	locker      AccountLocker
	clock       Clock
	cache       Cache
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	locker AccountLocker,
	clock Clock,
	logger zerolog.Logger,
) *LedgerUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		locker:      locker,
		clock:       clock,
		logger:      logger,
	}
}

// WithCache serves snapshots through cache for ttl. A zero ttl disables caching.
func (uc *LedgerUseCase) WithCache(cache Cache, ttl time.Duration) *LedgerUseCase {
	if ttl > 0 {
		uc.cache = cache
		uc.cacheTTL = ttl
	}
	return uc
}

// CreateAccount registers an account with an initial inventory.
func (uc *LedgerUseCase) CreateAccount(ctx context.Context, id string, items []string) (*domain.Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrInvalidRequest)
	}

	now := uc.clock.Now()
	account := &domain.Account{
		ID:        id,
		Inventory: domain.NewInventory(items),
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError("begin", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, storageError("create account", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit", err)
	}

	return account.Snapshot(), nil
}

// Credit adds items to an account.
func (uc *LedgerUseCase) Credit(ctx context.Context, accountID string, items []string) (*domain.Account, error) {
	return uc.mutate(ctx, accountID, items, func(tx Transaction, acc *domain.Account, at time.Time) error {
		return uc.CreditTx(ctx, tx, acc, items, at)
	})
}

// Debit removes items from an account only if it holds all of them.
func (uc *LedgerUseCase) Debit(ctx context.Context, accountID string, items []string) (*domain.Account, error) {
	return uc.mutate(ctx, accountID, items, func(tx Transaction, acc *domain.Account, at time.Time) error {
		return uc.DebitTx(ctx, tx, acc, items, at)
	})
}

func (uc *LedgerUseCase) mutate(
	ctx context.Context,
	accountID string,
	items []string,
	apply func(tx Transaction, acc *domain.Account, at time.Time) error,
) (*domain.Account, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	unlock, err := uc.Lock(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError("begin", err)
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.LoadForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	acc := accounts[accountID]
	if err := apply(tx, acc, uc.clock.Now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit", err)
	}

	uc.Invalidate(ctx, accountID)

	return acc.Snapshot(), nil
}

// Lock acquires exclusive in-process access to the accounts in ID order.
func (uc *LedgerUseCase) Lock(ctx context.Context, ids ...string) (func(), error) {
	unlock, err := uc.locker.Lock(ctx, ids...)
	if err != nil {
		return nil, storageError("lock accounts", err)
	}
	return unlock, nil
}

// LoadForUpdate loads and row-locks accounts inside tx. Every id must exist.
func (uc *LedgerUseCase) LoadForUpdate(ctx context.Context, tx Transaction, ids ...string) (map[string]*domain.Account, error) {
	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, sortedUnique(ids))
	if err != nil {
		return nil, storageError("load accounts", err)
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, acc := range accounts {
		if err := acc.Inventory.Validate(); err != nil {
			uc.logger.Error().
				Err(err).
				Str("account_id", acc.ID).
				Str("code", string(domain.CodeInternalInconsistency)).
				Msg("invariant violation in stored inventory")
			return nil, fmt.Errorf("account %s: %w", acc.ID, err)
		}
		byID[acc.ID] = acc
	}

	for _, id := range ids {
		if byID[id] == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
	}

	return byID, nil
}

// DebitTx removes items from a loaded account and saves it inside tx.
func (uc *LedgerUseCase) DebitTx(ctx context.Context, tx Transaction, acc *domain.Account, items []string, at time.Time) error {
	if err := acc.ApplyDebit(items, at); err != nil {
		return err
	}
	return storageError("save account", uc.accountRepo.Save(ctx, tx, acc))
}

// CreditTx adds items to a loaded account and saves it inside tx.
func (uc *LedgerUseCase) CreditTx(ctx context.Context, tx Transaction, acc *domain.Account, items []string, at time.Time) error {
	acc.ApplyCredit(items, at)
	return storageError("save account", uc.accountRepo.Save(ctx, tx, acc))
}

// Snapshot returns a read-only copy of the account. It may be stale by the
// time a trade runs and must not be used to decide a write.
func (uc *LedgerUseCase) Snapshot(ctx context.Context, accountID string) (*domain.Account, error) {
	if cached, ok := uc.cachedSnapshot(ctx, accountID); ok {
		return cached, nil
	}

	acc, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storageError("get account", err)
	}

	if err := acc.Inventory.Validate(); err != nil {
		return nil, fmt.Errorf("account %s: %w", acc.ID, err)
	}

	snap := acc.Snapshot()
	uc.storeSnapshot(ctx, snap)

	return snap, nil
}

// ListAccounts lists accounts with pagination.
func (uc *LedgerUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	accounts, err := uc.accountRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, storageError("list accounts", err)
	}
	return accounts, nil
}

// Invalidate drops cached snapshots of the accounts.
func (uc *LedgerUseCase) Invalidate(ctx context.Context, ids ...string) {
	if uc.cache == nil || len(ids) == 0 {
		return
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = inventoryCachePrefix + id
	}

	if err := uc.cache.Delete(ctx, keys...); err != nil {
		uc.logger.Warn().Err(err).Strs("account_ids", ids).Msg("failed to invalidate inventory cache")
	}
}

type cachedAccount struct {
	ID        string           `json:"id"`
	Inventory domain.Inventory `json:"inventory"`
	Version   int64            `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (uc *LedgerUseCase) cachedSnapshot(ctx context.Context, accountID string) (*domain.Account, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, inventoryCachePrefix+accountID)
	if err != nil || data == nil {
		return nil, false
	}

	var c cachedAccount
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false
	}

	if c.Inventory == nil {
		c.Inventory = domain.Inventory{}
	}

	return &domain.Account{
		ID:        c.ID,
		Inventory: c.Inventory,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, true
}

func (uc *LedgerUseCase) storeSnapshot(ctx context.Context, acc *domain.Account) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(cachedAccount{
		ID:        acc.ID,
		Inventory: acc.Inventory,
		Version:   acc.Version,
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	})
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, inventoryCachePrefix+acc.ID, data, uc.cacheTTL); err != nil {
		uc.logger.Debug().Err(err).Str("account_id", acc.ID).Msg("failed to cache inventory")
	}
}

// storageError passes domain errors through and classifies everything else
// as a retryable storage failure.
func storageError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrAccountExists),
		errors.Is(err, domain.ErrInsufficientInventory),
		errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, domain.ErrInternalInconsistency):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
	}
}
