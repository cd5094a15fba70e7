package postgres

import (
	"context"
	"math"
	"sort"

	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/internal/infrastructure/postgres/generated"
	"github.com/iho/barter/internal/usecase"
)

// TradeLogRepository implements usecase.TradeLogRepository over the
// trade_records table.
type TradeLogRepository struct {
	queries *generated.Queries
}

// NewTradeLogRepository creates a new TradeLogRepository.
func NewTradeLogRepository(pool DB) *TradeLogRepository {
	return &TradeLogRepository{
		queries: generated.New(pool),
	}
}

// Append takes the next sequence inside tx and inserts the record. The
// counter row stays locked until tx ends, so sequences commit in order.
func (r *TradeLogRepository) Append(ctx context.Context, tx usecase.Transaction, record *domain.TradeRecord) error {
	pt, err := asTx(tx)
	if err != nil {
		return err
	}
	queries := generated.New(pt.PgxTx())

	seq, err := queries.NextTradeSequence(ctx)
	if err != nil {
		return err
	}

	err = queries.InsertTradeRecord(ctx, generated.InsertTradeRecordParams{
		Sequence:   seq,
		ID:         record.ID,
		SenderID:   record.SenderID,
		ReceiverID: record.ReceiverID,
		Items:      record.Items,
		Outcome:    string(record.Outcome),
		Reason:     string(record.Reason),
		Detail:     record.Detail,
		RecordedAt: record.RecordedAt,
	})
	if err != nil {
		return err
	}

	record.Sequence = seq
	return nil
}

// List returns records after filter.AfterSequence in ascending order.
func (r *TradeLogRepository) List(ctx context.Context, filter domain.TradeFilter) ([]*domain.TradeRecord, error) {
	limit := int32(math.MaxInt32)
	if filter.Limit > 0 && filter.Limit < math.MaxInt32 {
		limit = int32(filter.Limit)
	}

	rows, err := r.queries.ListTradeRecords(ctx, generated.ListTradeRecordsParams{
		AfterSequence: filter.AfterSequence,
		AccountID:     filter.AccountID,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}

	records := make([]*domain.TradeRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToTradeRecord(row))
	}
	return records, nil
}

// LastSequence returns the highest committed sequence.
func (r *TradeLogRepository) LastSequence(ctx context.Context) (int64, error) {
	return r.queries.LastTradeSequence(ctx)
}

func rowToTradeRecord(row generated.TradeRecord) *domain.TradeRecord {
	return &domain.TradeRecord{
		ID:         row.ID,
		Sequence:   row.Sequence,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Items:      row.Items,
		Outcome:    domain.TradeOutcome(row.Outcome),
		Reason:     domain.ErrorCode(row.Reason),
		Detail:     row.Detail,
		RecordedAt: row.RecordedAt,
	}
}

func sortedItems(inv domain.Inventory) []string {
	items := make([]string, 0, len(inv))
	for item := range inv {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}
