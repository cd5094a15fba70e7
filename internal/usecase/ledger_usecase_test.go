package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/internal/usecase"
	"github.com/iho/barter/internal/usecase/mocks"
)

func newLedger(accRepo *mocks.MockAccountRepository, txMgr *mocks.MockTransactionManager) *usecase.LedgerUseCase {
	return usecase.NewLedgerUseCase(txMgr, accRepo, mocks.NewMockAccountLocker(), newFakeClock(), zerolog.Nop())
}

func TestLedgerUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		items   []string
		setup   func(*mocks.MockAccountRepository)
		wantErr error
	}{
		{
			name:  "creates with initial items",
			id:    "alice",
			items: []string{"sword", "sword", "bow"},
		},
		{
			name:    "blank id",
			id:      "  ",
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "duplicate id",
			id:   "alice",
			setup: func(repo *mocks.MockAccountRepository) {
				repo.Put(&domain.Account{ID: "alice", Inventory: domain.Inventory{}})
			},
			wantErr: domain.ErrAccountExists,
		},
		{
			name: "storage failure",
			id:   "alice",
			setup: func(repo *mocks.MockAccountRepository) {
				repo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
					return errors.New("connection refused")
				}
			},
			wantErr: domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accRepo := mocks.NewMockAccountRepository()
			if tt.setup != nil {
				tt.setup(accRepo)
			}

			acc, err := newLedger(accRepo, mocks.NewMockTransactionManager()).CreateAccount(context.Background(), tt.id, tt.items)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.id, acc.ID)
			assert.Equal(t, 2, acc.Inventory.Count("sword"))
			assert.Equal(t, 1, acc.Inventory.Count("bow"))
		})
	}
}

func TestLedgerUseCase_CreditAndDebit(t *testing.T) {
	ctx := context.Background()
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Put(&domain.Account{ID: "alice", Inventory: domain.NewInventory([]string{"sword"})})

	committed := 0
	txMgr := mocks.NewMockTransactionManager()
	txMgr.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		return &mocks.MockTransaction{CommitFunc: func(ctx context.Context) error {
			committed++
			return nil
		}}, nil
	}

	ledger := newLedger(accRepo, txMgr)

	acc, err := ledger.Credit(ctx, "alice", []string{"bow", "bow"})
	require.NoError(t, err)
	assert.Equal(t, 2, acc.Inventory.Count("bow"))
	assert.Equal(t, int64(1), acc.Version)

	acc, err = ledger.Debit(ctx, "alice", []string{"sword", "bow"})
	require.NoError(t, err)
	assert.True(t, domain.Inventory{"bow": 1}.Equal(acc.Inventory))
	assert.Equal(t, int64(2), acc.Version)
	assert.Equal(t, 2, committed)

	_, err = ledger.Debit(ctx, "alice", []string{"sword"})
	require.ErrorIs(t, err, domain.ErrInsufficientInventory)
	assert.Equal(t, map[string]int{"sword": 1}, domain.MissingItems(err))
	assert.Equal(t, 2, committed)

	stored, err := accRepo.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, domain.Inventory{"bow": 1}.Equal(stored.Inventory))
}

func TestLedgerUseCase_MutateErrors(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(mocks.NewMockAccountRepository(), mocks.NewMockTransactionManager())

	_, err := ledger.Credit(ctx, "alice", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyItems)

	_, err = ledger.Credit(ctx, "ghost", []string{"bow"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = ledger.Debit(ctx, "ghost", []string{"bow"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestLedgerUseCase_LoadForUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("negative count is an inconsistency", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		accRepo.Put(&domain.Account{ID: "alice", Inventory: domain.Inventory{"sword": -1}})

		_, err := newLedger(accRepo, mocks.NewMockTransactionManager()).LoadForUpdate(ctx, &mocks.MockTransaction{}, "alice")
		assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
	})

	t.Run("repository failure is a storage error", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		accRepo.GetByIDsForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
			return nil, errors.New("i/o timeout")
		}

		_, err := newLedger(accRepo, mocks.NewMockTransactionManager()).LoadForUpdate(ctx, &mocks.MockTransaction{}, "alice")
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
		assert.True(t, domain.Retryable(err))
	})

	t.Run("deduplicates and sorts ids", func(t *testing.T) {
		var got []string
		accRepo := mocks.NewMockAccountRepository()
		accRepo.GetByIDsForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
			got = ids
			return []*domain.Account{
				{ID: "alice", Inventory: domain.Inventory{}},
				{ID: "bob", Inventory: domain.Inventory{}},
			}, nil
		}

		accounts, err := newLedger(accRepo, mocks.NewMockTransactionManager()).LoadForUpdate(ctx, &mocks.MockTransaction{}, "bob", "alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, got)
		assert.Len(t, accounts, 2)
	})
}

func TestLedgerUseCase_SnapshotCache(t *testing.T) {
	ctx := context.Background()
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Put(&domain.Account{ID: "alice", Inventory: domain.NewInventory([]string{"sword"})})

	reads := 0
	accRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Account, error) {
		reads++
		return &domain.Account{ID: id, Inventory: domain.NewInventory([]string{"sword"})}, nil
	}

	cache := mocks.NewMockCache()
	ledger := newLedger(accRepo, mocks.NewMockTransactionManager()).WithCache(cache, time.Minute)

	first, err := ledger.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, cache.Has("inventory:alice"))

	second, err := ledger.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, reads)
	assert.True(t, first.Inventory.Equal(second.Inventory))

	_, err = ledger.Credit(ctx, "alice", []string{"bow"})
	require.NoError(t, err)
	assert.False(t, cache.Has("inventory:alice"))

	_, err = ledger.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, reads)
}

func TestLedgerUseCase_SnapshotNotFound(t *testing.T) {
	ledger := newLedger(mocks.NewMockAccountRepository(), mocks.NewMockTransactionManager())

	_, err := ledger.Snapshot(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestLedgerUseCase_ListAccounts(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	for _, id := range []string{"carol", "alice", "bob"} {
		accRepo.Put(&domain.Account{ID: id, Inventory: domain.Inventory{}})
	}

	var gotLimit int
	list := accRepo.List
	accRepo.ListFunc = func(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
		gotLimit = limit
		accRepo.ListFunc = nil
		return list(ctx, limit, offset)
	}

	accounts, err := newLedger(accRepo, mocks.NewMockTransactionManager()).ListAccounts(context.Background(), 5000, 1)
	require.NoError(t, err)
	assert.Equal(t, usecase.MaxListLimit, gotLimit)
	require.Len(t, accounts, 2)
	assert.Equal(t, "bob", accounts[0].ID)
}
