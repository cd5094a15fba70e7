package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/barter/internal/domain"
)

func seed(t *testing.T, store *Store, id string, items ...string) {
	t.Helper()

	ctx := context.Background()
	tx, err := NewTxManager(store).Begin(ctx)
	require.NoError(t, err)

	err = NewAccountRepository(store).Create(ctx, tx, &domain.Account{ID: id, Inventory: domain.NewInventory(items)})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
}

func TestTx_CommitAppliesAllWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seed(t, store, "alice", "sword", "bow")
	seed(t, store, "bob")

	accounts := NewAccountRepository(store)
	trades := NewTradeLogRepository(store)

	tx, err := NewTxManager(store).Begin(ctx)
	require.NoError(t, err)

	loaded, err := accounts.GetByIDsForUpdate(ctx, tx, []string{"bob", "alice"})
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "alice", loaded[0].ID)

	now := time.Now()
	require.NoError(t, loaded[0].ApplyDebit([]string{"sword"}, now))
	loaded[1].ApplyCredit([]string{"sword"}, now)
	require.NoError(t, accounts.Save(ctx, tx, loaded[0]))
	require.NoError(t, accounts.Save(ctx, tx, loaded[1]))

	record := &domain.TradeRecord{ID: "t1", SenderID: "alice", ReceiverID: "bob", Items: []string{"sword"}, Outcome: domain.TradeCommitted}
	require.NoError(t, trades.Append(ctx, tx, record))

	// nothing visible before commit
	alice, err := accounts.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Inventory.Count("sword"))
	assert.Zero(t, record.Sequence)

	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, int64(1), record.Sequence)

	alice, err = accounts.GetByID(ctx, "alice")
	require.NoError(t, err)
	bob, err := accounts.GetByID(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, 0, alice.Inventory.Count("sword"))
	assert.Equal(t, 1, bob.Inventory.Count("sword"))
	assert.Equal(t, int64(1), alice.Version)

	// the caller's slice is not shared with the stored record
	record.Items[0] = "mutated"
	listed, err := trades.List(ctx, domain.TradeFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, []string{"sword"}, listed[0].Items)
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seed(t, store, "alice", "sword")

	accounts := NewAccountRepository(store)
	trades := NewTradeLogRepository(store)

	tx, err := NewTxManager(store).Begin(ctx)
	require.NoError(t, err)

	loaded, err := accounts.GetByIDsForUpdate(ctx, tx, []string{"alice"})
	require.NoError(t, err)
	require.NoError(t, loaded[0].ApplyDebit([]string{"sword"}, time.Now()))
	require.NoError(t, accounts.Save(ctx, tx, loaded[0]))
	require.NoError(t, trades.Append(ctx, tx, &domain.TradeRecord{ID: "t1"}))

	require.NoError(t, tx.Rollback(ctx))

	alice, err := accounts.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Inventory.Count("sword"))

	last, err := trades.LastSequence(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)

	assert.ErrorIs(t, tx.Commit(ctx), errTxDone)
}

func TestTx_CommitDetectsConflict(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seed(t, store, "alice", "sword", "sword")

	accounts := NewAccountRepository(store)
	txm := NewTxManager(store)

	first, err := txm.Begin(ctx)
	require.NoError(t, err)
	second, err := txm.Begin(ctx)
	require.NoError(t, err)

	a1, err := accounts.GetByIDsForUpdate(ctx, first, []string{"alice"})
	require.NoError(t, err)
	a2, err := accounts.GetByIDsForUpdate(ctx, second, []string{"alice"})
	require.NoError(t, err)

	require.NoError(t, a1[0].ApplyDebit([]string{"sword"}, time.Now()))
	require.NoError(t, accounts.Save(ctx, first, a1[0]))
	require.NoError(t, a2[0].ApplyDebit([]string{"sword"}, time.Now()))
	require.NoError(t, accounts.Save(ctx, second, a2[0]))

	require.NoError(t, first.Commit(ctx))
	assert.ErrorIs(t, second.Commit(ctx), ErrConflict)

	alice, err := accounts.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Inventory.Count("sword"))
}

func TestTx_FaultHook(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seed(t, store, "alice", "sword")

	injected := errors.New("disk on fire")
	store.SetFaultHook(func(op string) error {
		if op == "commit" {
			return injected
		}
		return nil
	})

	accounts := NewAccountRepository(store)
	tx, err := NewTxManager(store).Begin(ctx)
	require.NoError(t, err)

	loaded, err := accounts.GetByIDsForUpdate(ctx, tx, []string{"alice"})
	require.NoError(t, err)
	require.NoError(t, loaded[0].ApplyDebit([]string{"sword"}, time.Now()))
	require.NoError(t, accounts.Save(ctx, tx, loaded[0]))

	assert.ErrorIs(t, tx.Commit(ctx), injected)

	store.SetFaultHook(nil)
	alice, err := accounts.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Inventory.Count("sword"))
}

func TestTxManager_BeginCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTxManager(NewStore()).Begin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
