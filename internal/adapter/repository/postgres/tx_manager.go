package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/barter/internal/infrastructure/postgres/generated"
	"github.com/iho/barter/internal/usecase"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool DB) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx, read: make(map[string]int64)}, nil
}

// Tx wraps a pgx transaction and remembers the account versions it loaded.
type Tx struct {
	tx   pgx.Tx
	read map[string]int64
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	pt, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("postgres: unexpected transaction type %T", tx)
	}
	return pt, nil
}
