package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iho/barter/internal/adapter/repository/memory"
	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/internal/infrastructure/lockmgr"
	"github.com/iho/barter/internal/usecase"
	"github.com/iho/barter/internal/usecase/mocks"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// exchangeEnv wires the use cases over the in-memory store.
type exchangeEnv struct {
	store    *memory.Store
	ledger   *usecase.LedgerUseCase
	tradeLog *usecase.TradeLogUseCase
	exchange *usecase.ExchangeUseCase
}

func newExchangeEnv(t *testing.T, configure func(*usecase.ExchangeConfig)) *exchangeEnv {
	t.Helper()

	store := memory.NewStore()
	txManager := memory.NewTxManager(store)
	clock := newFakeClock()

	ledger := usecase.NewLedgerUseCase(txManager, memory.NewAccountRepository(store), lockmgr.New(), clock, zerolog.Nop())
	tradeLog := usecase.NewTradeLogUseCase(txManager, memory.NewTradeLogRepository(store), 0)

	cfg := usecase.ExchangeConfig{
		TxManager:        txManager,
		Ledger:           ledger,
		TradeLog:         tradeLog,
		IDGen:            mocks.NewMockIDGenerator(),
		Clock:            clock,
		Logger:           zerolog.Nop(),
		RecordRejections: true,
	}
	if configure != nil {
		configure(&cfg)
	}

	return &exchangeEnv{
		store:    store,
		ledger:   ledger,
		tradeLog: tradeLog,
		exchange: usecase.NewExchangeUseCase(cfg),
	}
}

func (e *exchangeEnv) account(t *testing.T, id string, items ...string) {
	t.Helper()
	_, err := e.ledger.CreateAccount(context.Background(), id, items)
	require.NoError(t, err)
}

func (e *exchangeEnv) inventory(t *testing.T, id string) domain.Inventory {
	t.Helper()
	acc, err := e.ledger.Snapshot(context.Background(), id)
	require.NoError(t, err)
	return acc.Inventory
}

func (e *exchangeEnv) records(t *testing.T) []*domain.TradeRecord {
	t.Helper()
	records, err := e.tradeLog.Collect(context.Background(), domain.TradeFilter{})
	require.NoError(t, err)
	return records
}
