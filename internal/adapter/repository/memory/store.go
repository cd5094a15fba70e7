// Package memory implements the storage collaborators in process memory with
// all-or-nothing transactions.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/internal/usecase"
)

// ErrConflict is returned when a transaction commits over a concurrent write.
var ErrConflict = errors.New("concurrent modification")

// errTxDone is returned when a finished transaction is reused.
var errTxDone = errors.New("transaction already finished")

// Store holds accounts and the trade log.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	trades   []*domain.TradeRecord
	lastSeq  int64
	fault    func(op string) error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*domain.Account)}
}

// SetFaultHook installs a hook consulted before save, append and commit.
// A non-nil return fails that operation.
func (s *Store) SetFaultHook(hook func(op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = hook
}

func (s *Store) check(op string) error {
	s.mu.RLock()
	hook := s.fault
	s.mu.RUnlock()

	if hook == nil {
		return nil
	}
	return hook(op)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:   m.store,
		read:    make(map[string]int64),
		written: make(map[string]*domain.Account),
	}, nil
}

// Tx buffers writes until Commit.
type Tx struct {
	mu      sync.Mutex
	store   *Store
	read    map[string]int64
	created []*domain.Account
	written map[string]*domain.Account
	order   []string
	records []*domain.TradeRecord
	done    bool
}

// Commit applies all buffered writes atomically. Trade records receive their
// sequence numbers here, so committed sequences never have gaps.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return errTxDone
	}
	t.done = true

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.store.check("commit"); err != nil {
		return err
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range t.created {
		if _, exists := s.accounts[acc.ID]; exists {
			return fmt.Errorf("%w: %s", domain.ErrAccountExists, acc.ID)
		}
	}

	for _, id := range t.order {
		current, ok := s.accounts[id]
		if !ok && !t.isCreated(id) {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
		if ok && current.Version != t.read[id] {
			return fmt.Errorf("%w: account %s", ErrConflict, id)
		}
	}

	for _, acc := range t.created {
		s.accounts[acc.ID] = acc.Snapshot()
	}

	for _, id := range t.order {
		s.accounts[id] = t.written[id].Snapshot()
	}

	for _, r := range t.records {
		s.lastSeq++
		r.Sequence = s.lastSeq
		stored := *r
		stored.Items = append([]string(nil), r.Items...)
		s.trades = append(s.trades, &stored)
	}

	return nil
}

// Rollback discards buffered writes. It is safe after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.done = true
	return nil
}

func (t *Tx) isCreated(id string) bool {
	for _, acc := range t.created {
		if acc.ID == id {
			return true
		}
	}
	return false
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory: unexpected transaction type %T", tx)
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.done {
		return nil, errTxDone
	}
	return mt, nil
}

func sortedIDs(m map[string]*domain.Account) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
