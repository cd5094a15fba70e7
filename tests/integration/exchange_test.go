package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/tests/testutil"
)

type backend struct {
	name  string
	setup func(t *testing.T, ctx context.Context) *testutil.Stack
}

func backends() []backend {
	return []backend{
		{
			name: "memory",
			setup: func(t *testing.T, _ context.Context) *testutil.Stack {
				return testutil.NewMemoryStack(t)
			},
		},
		{
			name: "postgres",
			setup: func(t *testing.T, ctx context.Context) *testutil.Stack {
				db := testutil.NewTestDB(t)
				db.TruncateAll(ctx)
				return testutil.NewPostgresStack(t, db)
			},
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, ctx context.Context, s *testutil.Stack)) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			fn(t, ctx, b.setup(t, ctx))
		})
	}
}

func TestTradeScenario(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s *testutil.Stack) {
		s.CreateAccount(t, ctx, "alice", "apple", "apple", "apple", "collar")
		s.CreateAccount(t, ctx, "bob")

		// 1. Committed trade
		record, err := s.Exchange.ExecuteTrade(ctx, domain.TradeRequest{
			SenderID: "alice", ReceiverID: "bob", Items: []string{"apple", "apple"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), record.Sequence)
		assert.Equal(t, domain.TradeCommitted, record.Outcome)

		assert.True(t, s.Inventory(t, ctx, "alice").Equal(domain.Inventory{"apple": 1, "collar": 1}))
		assert.True(t, s.Inventory(t, ctx, "bob").Equal(domain.Inventory{"apple": 2}))

		// 2. Rejected: alice has only one apple left
		_, err = s.Exchange.ExecuteTrade(ctx, domain.TradeRequest{
			SenderID: "alice", ReceiverID: "bob", Items: []string{"apple", "apple", "collar"},
		})
		require.Error(t, err)
		assert.Equal(t, domain.CodeInsufficientInventory, domain.CodeOf(err))
		assert.Equal(t, map[string]int{"apple": 1}, domain.MissingItems(err))

		assert.True(t, s.Inventory(t, ctx, "alice").Equal(domain.Inventory{"apple": 1, "collar": 1}))
		assert.True(t, s.Inventory(t, ctx, "bob").Equal(domain.Inventory{"apple": 2}))

		// 3. Unknown receiver
		_, err = s.Exchange.ExecuteTrade(ctx, domain.TradeRequest{
			SenderID: "alice", ReceiverID: "ghost", Items: []string{"collar"},
		})
		assert.Equal(t, domain.CodeAccountNotFound, domain.CodeOf(err))

		// 4. Invalid shape is not logged
		_, err = s.Exchange.ExecuteTrade(ctx, domain.TradeRequest{
			SenderID: "bob", ReceiverID: "bob", Items: []string{"apple"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		trades, err := s.TradeLog.Collect(ctx, domain.TradeFilter{})
		require.NoError(t, err)
		require.Len(t, trades, 3)
		for i, tr := range trades {
			assert.Equal(t, int64(i+1), tr.Sequence)
		}
		assert.Equal(t, domain.TradeCommitted, trades[0].Outcome)
		assert.Equal(t, domain.TradeRejected, trades[1].Outcome)
		assert.Equal(t, domain.CodeInsufficientInventory, trades[1].Reason)
		assert.Equal(t, domain.CodeAccountNotFound, trades[2].Reason)

		report, err := s.Reconciliation.CheckConsistency(ctx)
		require.NoError(t, err)
		assert.True(t, report.Consistent)
		assert.Equal(t, 3, report.ItemTotals["apple"])
	})
}

func TestConcurrentTradesFromOneSender(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s *testutil.Stack) {
		const stock, attempts = 30, 60

		s.CreateAccount(t, ctx, "alice", testutil.Repeat("treat", stock)...)
		s.CreateAccount(t, ctx, "bob")
		s.CreateAccount(t, ctx, "carol")

		var (
			wg        sync.WaitGroup
			committed atomic.Int32
			rejected  atomic.Int32
			failed    atomic.Int32
		)

		wg.Add(attempts)
		for i := range attempts {
			go func() {
				defer wg.Done()

				receiver := "bob"
				if i%2 == 1 {
					receiver = "carol"
				}
				_, err := s.Exchange.ExecuteTrade(ctx, domain.TradeRequest{
					SenderID: "alice", ReceiverID: receiver, Items: []string{"treat"},
				})
				switch {
				case err == nil:
					committed.Add(1)
				case errors.Is(err, domain.ErrInsufficientInventory):
					rejected.Add(1)
				default:
					failed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(stock), committed.Load())
		assert.Equal(t, int32(attempts-stock), rejected.Load())
		assert.Zero(t, failed.Load())

		alice := s.Inventory(t, ctx, "alice")
		bob := s.Inventory(t, ctx, "bob")
		carol := s.Inventory(t, ctx, "carol")
		assert.Zero(t, alice.Count("treat"))
		assert.Equal(t, stock, bob.Count("treat")+carol.Count("treat"))

		trades, err := s.TradeLog.Collect(ctx, domain.TradeFilter{})
		require.NoError(t, err)
		require.Len(t, trades, attempts)

		var logged int
		for i, tr := range trades {
			require.Equal(t, int64(i+1), tr.Sequence, "sequence must have no gaps")
			if tr.Outcome == domain.TradeCommitted {
				logged++
			}
		}
		assert.Equal(t, stock, logged)
	})
}

func TestOpposingTradesDoNotDeadlock(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s *testutil.Stack) {
		const rounds = 25

		s.CreateAccount(t, ctx, "alice", testutil.Repeat("ball", rounds)...)
		s.CreateAccount(t, ctx, "bob", testutil.Repeat("bone", rounds)...)

		var wg sync.WaitGroup
		errs := make(chan error, 2*rounds)

		wg.Add(2 * rounds)
		for range rounds {
			go func() {
				defer wg.Done()
				_, err := s.Exchange.ExecuteTrade(ctx, domain.TradeRequest{
					SenderID: "alice", ReceiverID: "bob", Items: []string{"ball"},
				})
				errs <- err
			}()
			go func() {
				defer wg.Done()
				_, err := s.Exchange.ExecuteTrade(ctx, domain.TradeRequest{
					SenderID: "bob", ReceiverID: "alice", Items: []string{"bone"},
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		assert.True(t, s.Inventory(t, ctx, "alice").Equal(domain.Inventory{"bone": rounds}))
		assert.True(t, s.Inventory(t, ctx, "bob").Equal(domain.Inventory{"ball": rounds}))

		report, err := s.Reconciliation.CheckConsistency(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"ball": rounds, "bone": rounds}, report.ItemTotals)
	})
}

func TestTradeLogFilters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s *testutil.Stack) {
		s.CreateAccount(t, ctx, "alice", "a", "b", "c")
		s.CreateAccount(t, ctx, "bob")
		s.CreateAccount(t, ctx, "carol", "d")

		for _, req := range []domain.TradeRequest{
			{SenderID: "alice", ReceiverID: "bob", Items: []string{"a"}},
			{SenderID: "carol", ReceiverID: "bob", Items: []string{"d"}},
			{SenderID: "alice", ReceiverID: "carol", Items: []string{"b"}},
		} {
			_, err := s.Exchange.ExecuteTrade(ctx, req)
			require.NoError(t, err)
		}

		forCarol, err := s.TradeLog.Collect(ctx, domain.TradeFilter{AccountID: "carol"})
		require.NoError(t, err)
		require.Len(t, forCarol, 2)
		assert.Equal(t, int64(2), forCarol[0].Sequence)
		assert.Equal(t, int64(3), forCarol[1].Sequence)

		after, err := s.TradeLog.Collect(ctx, domain.TradeFilter{AfterSequence: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, int64(2), after[0].Sequence)

		last, err := s.Trades.LastSequence(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), last)
	})
}

func TestDuplicateAccount(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s *testutil.Stack) {
		s.CreateAccount(t, ctx, "alice", "apple")

		_, err := s.Ledger.CreateAccount(ctx, "alice", nil)
		assert.ErrorIs(t, err, domain.ErrAccountExists)
		assert.True(t, s.Inventory(t, ctx, "alice").Equal(domain.Inventory{"apple": 1}))
	})
}

func TestStorageFailureLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewMemoryStack(t)

	s.CreateAccount(t, ctx, "alice", "apple")
	s.CreateAccount(t, ctx, "bob")

	s.Store.SetFaultHook(func(op string) error {
		if op == "commit" {
			return domain.ErrStorageUnavailable
		}
		return nil
	})

	_, err := s.Exchange.ExecuteTrade(ctx, domain.TradeRequest{
		SenderID: "alice", ReceiverID: "bob", Items: []string{"apple"},
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeStorageUnavailable, domain.CodeOf(err))
	assert.True(t, domain.Retryable(err))

	s.Store.SetFaultHook(nil)

	assert.True(t, s.Inventory(t, ctx, "alice").Equal(domain.Inventory{"apple": 1}))
	assert.Empty(t, s.Inventory(t, ctx, "bob"))

	trades, err := s.TradeLog.Collect(ctx, domain.TradeFilter{})
	require.NoError(t, err)
	assert.Empty(t, trades)

	// The same request succeeds once storage recovers.
	record, err := s.Exchange.ExecuteTrade(ctx, domain.TradeRequest{
		SenderID: "alice", ReceiverID: "bob", Items: []string{"apple"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.Sequence)
}
