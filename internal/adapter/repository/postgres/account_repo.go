package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/internal/infrastructure/postgres/generated"
	"github.com/iho/barter/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository over the accounts
// and inventory_items tables.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool DB) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(pool),
	}
}

// Create inserts the account and its initial inventory.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pt, err := asTx(tx)
	if err != nil {
		return err
	}
	queries := generated.New(pt.PgxTx())

	err = queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		Version:   account.Version,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	})
	if err != nil {
		return mapAccountError(account.ID, err)
	}

	return writeInventory(ctx, queries, account)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	accounts, err := withInventories(ctx, r.queries, []generated.Account{row})
	if err != nil {
		return nil, err
	}
	return accounts[0], nil
}

// GetByIDsForUpdate row-locks the accounts in ascending ID order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	pt, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	queries := generated.New(pt.PgxTx())

	rows, err := queries.GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	accounts, err := withInventories(ctx, queries, rows)
	if err != nil {
		return nil, err
	}

	for _, acc := range accounts {
		if _, seen := pt.read[acc.ID]; !seen {
			pt.read[acc.ID] = acc.Version
		}
	}

	return accounts, nil
}

// Save bumps the account row version and replaces its inventory rows.
func (r *AccountRepository) Save(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pt, err := asTx(tx)
	if err != nil {
		return err
	}
	queries := generated.New(pt.PgxTx())

	expected, ok := pt.read[account.ID]
	if !ok {
		return fmt.Errorf("postgres: account %s saved without being loaded for update", account.ID)
	}

	affected, err := queries.UpdateAccountVersion(ctx, generated.UpdateAccountVersionParams{
		ID:              account.ID,
		Version:         account.Version,
		UpdatedAt:       account.UpdatedAt,
		ExpectedVersion: expected,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrConcurrentUpdate, account.ID)
	}
	pt.read[account.ID] = account.Version

	return writeInventory(ctx, queries, account)
}

// List lists accounts ordered by ID.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return withInventories(ctx, r.queries, rows)
}

func writeInventory(ctx context.Context, queries *generated.Queries, account *domain.Account) error {
	if err := queries.DeleteInventory(ctx, account.ID); err != nil {
		return err
	}

	if len(account.Inventory) == 0 {
		return nil
	}

	params := generated.InsertInventoryParams{
		AccountID:  account.ID,
		Items:      make([]string, 0, len(account.Inventory)),
		Quantities: make([]int32, 0, len(account.Inventory)),
	}
	for _, item := range sortedItems(account.Inventory) {
		params.Items = append(params.Items, item)
		params.Quantities = append(params.Quantities, int32(account.Inventory[item]))
	}

	return queries.InsertInventory(ctx, params)
}

func withInventories(ctx context.Context, queries *generated.Queries, rows []generated.Account) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(rows))
	if len(rows) == 0 {
		return accounts, nil
	}

	ids := make([]string, len(rows))
	byID := make(map[string]*domain.Account, len(rows))
	for i, row := range rows {
		acc := rowToAccount(row)
		ids[i] = acc.ID
		byID[acc.ID] = acc
		accounts = append(accounts, acc)
	}

	items, err := queries.ListInventoryByAccounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if acc, ok := byID[it.AccountID]; ok {
			acc.Inventory[it.Item] = int(it.Quantity)
		}
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:        row.ID,
		Inventory: make(domain.Inventory),
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
