package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/barter/internal/adapter/repository/memory"
	"github.com/iho/barter/internal/adapter/repository/postgres"
	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/internal/infrastructure/lockmgr"
	infrapg "github.com/iho/barter/internal/infrastructure/postgres"
	"github.com/iho/barter/internal/usecase"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool *pgxpool.Pool
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL and applies the embedded migrations.
// The test is skipped when -short is set or DATABASE_URL is empty.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := infrapg.RunMigrations(dbURL, "", zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 20, 0)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{Pool: pool, t: t}
	t.Cleanup(db.Cleanup)
	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data and resets the trade sequence.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE trade_records;
		TRUNCATE TABLE inventory_items, accounts CASCADE;
		UPDATE trade_sequence SET value = 0;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// Stack is the ledger, exchange and trade log wired over one storage backend.
type Stack struct {
	Ledger         *usecase.LedgerUseCase
	Exchange       *usecase.ExchangeUseCase
	TradeLog       *usecase.TradeLogUseCase
	Reconciliation *usecase.ReconciliationUseCase
	Accounts       usecase.AccountRepository
	Trades         usecase.TradeLogRepository
	Store          *memory.Store // nil for postgres
}

// NewMemoryStack wires the use cases over the in-memory store.
func NewMemoryStack(t *testing.T) *Stack {
	t.Helper()

	store := memory.NewStore()
	s := newStack(memory.NewTxManager(store), memory.NewAccountRepository(store),
		memory.NewTradeLogRepository(store), nil)
	s.Store = store
	return s
}

// NewPostgresStack wires the use cases over db, with serialization retries.
func NewPostgresStack(t *testing.T, db *TestDB) *Stack {
	t.Helper()

	return newStack(postgres.NewTxManager(db.Pool), postgres.NewAccountRepository(db.Pool),
		postgres.NewTradeLogRepository(db.Pool), postgres.NewRetrier(zerolog.Nop()))
}

func newStack(
	txManager usecase.TransactionManager,
	accounts usecase.AccountRepository,
	trades usecase.TradeLogRepository,
	retrier usecase.Retrier,
) *Stack {
	ledger := usecase.NewLedgerUseCase(txManager, accounts, lockmgr.New(), nil, zerolog.Nop())
	tradeLog := usecase.NewTradeLogUseCase(txManager, trades, 0)

	return &Stack{
		Ledger:   ledger,
		TradeLog: tradeLog,
		Exchange: usecase.NewExchangeUseCase(usecase.ExchangeConfig{
			TxManager:        txManager,
			Ledger:           ledger,
			TradeLog:         tradeLog,
			IDGen:            postgres.NewULIDGenerator(),
			Retrier:          retrier,
			Logger:           zerolog.Nop(),
			RecordRejections: true,
		}),
		Reconciliation: usecase.NewReconciliationUseCase(accounts, nil),
		Accounts:       accounts,
		Trades:         trades,
	}
}

// CreateAccount registers id holding items or fails the test.
func (s *Stack) CreateAccount(t *testing.T, ctx context.Context, id string, items ...string) *domain.Account {
	t.Helper()

	acc, err := s.Ledger.CreateAccount(ctx, id, items)
	if err != nil {
		t.Fatalf("failed to create account %s: %v", id, err)
	}
	return acc
}

// Inventory returns the current inventory of id or fails the test.
func (s *Stack) Inventory(t *testing.T, ctx context.Context, id string) domain.Inventory {
	t.Helper()

	acc, err := s.Ledger.Snapshot(ctx, id)
	if err != nil {
		t.Fatalf("failed to read account %s: %v", id, err)
	}
	return acc.Inventory
}

// Repeat returns n copies of item.
func Repeat(item string, n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = item
	}
	return items
}
