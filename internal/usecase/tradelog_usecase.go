package usecase

import (
	"context"
	"iter"

	"github.com/iho/barter/internal/domain"
)

// TradeLogUseCase gives append-only access to trade records.
type TradeLogUseCase struct {
	txManager TransactionManager
	repo      TradeLogRepository
	pageSize  int
}

// NewTradeLogUseCase creates a new TradeLogUseCase.
func NewTradeLogUseCase(txManager TransactionManager, repo TradeLogRepository, pageSize int) *TradeLogUseCase {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &TradeLogUseCase{
		txManager: txManager,
		repo:      repo,
		pageSize:  pageSize,
	}
}

// Append stores a record in its own transaction.
func (uc *TradeLogUseCase) Append(ctx context.Context, record *domain.TradeRecord) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return storageError("begin", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.AppendTx(ctx, tx, record); err != nil {
		return err
	}

	return storageError("commit", tx.Commit(ctx))
}

// AppendTx stores a record inside an existing transaction.
func (uc *TradeLogUseCase) AppendTx(ctx context.Context, tx Transaction, record *domain.TradeRecord) error {
	return storageError("append trade", uc.repo.Append(ctx, tx, record))
}

// ListTrades yields records in ascending sequence order, fetching one page at
// a time. filter.Limit caps the number of records yielded; zero means all
// records present when iteration started.
func (uc *TradeLogUseCase) ListTrades(ctx context.Context, filter domain.TradeFilter) iter.Seq2[*domain.TradeRecord, error] {
	return func(yield func(*domain.TradeRecord, error) bool) {
		last, err := uc.repo.LastSequence(ctx)
		if err != nil {
			yield(nil, storageError("last sequence", err))
			return
		}

		remaining := filter.Limit
		cursor := filter.AfterSequence

		for cursor < last {
			page := domain.TradeFilter{
				AccountID:     filter.AccountID,
				AfterSequence: cursor,
				Limit:         uc.pageSize,
			}

			records, err := uc.repo.List(ctx, page)
			if err != nil {
				yield(nil, storageError("list trades", err))
				return
			}

			if len(records) == 0 {
				return
			}

			for _, r := range records {
				if r.Sequence > last {
					return
				}
				if !yield(r, nil) {
					return
				}
				if filter.Limit > 0 {
					remaining--
					if remaining == 0 {
						return
					}
				}
			}

			cursor = records[len(records)-1].Sequence
		}
	}
}

// Collect gathers up to limit records from ListTrades.
func (uc *TradeLogUseCase) Collect(ctx context.Context, filter domain.TradeFilter) ([]*domain.TradeRecord, error) {
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	records := make([]*domain.TradeRecord, 0)
	for r, err := range uc.ListTrades(ctx, filter) {
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, nil
}
