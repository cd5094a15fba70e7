package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stages a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	_, exists := r.store.accounts[account.ID]
	r.store.mu.RUnlock()

	if exists || mt.isCreated(account.ID) {
		return fmt.Errorf("%w: %s", domain.ErrAccountExists, account.ID)
	}

	mt.mu.Lock()
	mt.created = append(mt.created, account.Snapshot())
	mt.mu.Unlock()

	return nil
}

// GetByID returns a copy of the committed account.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return acc.Snapshot(), nil
}

// GetByIDsForUpdate returns copies of the accounts in ascending ID order and
// remembers their versions for the commit-time conflict check.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	mt, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	r.store.mu.RLock()
	accounts := make([]*domain.Account, 0, len(sorted))
	for _, id := range sorted {
		if acc, ok := r.store.accounts[id]; ok {
			accounts = append(accounts, acc.Snapshot())
		}
	}
	r.store.mu.RUnlock()

	mt.mu.Lock()
	for _, acc := range accounts {
		if _, seen := mt.read[acc.ID]; !seen {
			mt.read[acc.ID] = acc.Version
		}
	}
	mt.mu.Unlock()

	return accounts, nil
}

// Save stages the account's new state.
func (r *AccountRepository) Save(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := r.store.check("save"); err != nil {
		return err
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	if _, read := mt.read[account.ID]; !read {
		return fmt.Errorf("memory: account %s saved without being loaded for update", account.ID)
	}

	if _, ok := mt.written[account.ID]; !ok {
		mt.order = append(mt.order, account.ID)
	}
	mt.written[account.ID] = account.Snapshot()

	return nil
}

// List lists accounts ordered by ID.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := sortedIDs(r.store.accounts)
	if offset >= len(ids) {
		return []*domain.Account{}, nil
	}

	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	accounts := make([]*domain.Account, 0, end-offset)
	for _, id := range ids[offset:end] {
		accounts = append(accounts, r.store.accounts[id].Snapshot())
	}
	return accounts, nil
}
