package memory

import (
	"context"
	"sort"

	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/internal/usecase"
)

// TradeLogRepository implements usecase.TradeLogRepository.
type TradeLogRepository struct {
	store *Store
}

// NewTradeLogRepository creates a new TradeLogRepository.
func NewTradeLogRepository(store *Store) *TradeLogRepository {
	return &TradeLogRepository{store: store}
}

// Append stages the record; its sequence is assigned at commit.
func (r *TradeLogRepository) Append(ctx context.Context, tx usecase.Transaction, record *domain.TradeRecord) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := r.store.check("append"); err != nil {
		return err
	}

	mt.mu.Lock()
	mt.records = append(mt.records, record)
	mt.mu.Unlock()

	return nil
}

// List returns matching records after the cursor in ascending order.
func (r *TradeLogRepository) List(ctx context.Context, filter domain.TradeFilter) ([]*domain.TradeRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	trades := r.store.trades

	// trades are ordered by sequence; skip to the cursor
	start := sort.Search(len(trades), func(i int) bool {
		return trades[i].Sequence > filter.AfterSequence
	})

	out := make([]*domain.TradeRecord, 0)
	for _, t := range trades[start:] {
		if !filter.Matches(t) {
			continue
		}

		cp := *t
		cp.Items = append([]string(nil), t.Items...)
		out = append(out, &cp)

		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}

	return out, nil
}

// LastSequence returns the highest committed sequence.
func (r *TradeLogRepository) LastSequence(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.lastSeq, nil
}
