package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/barter/internal/domain"
)

// ExchangeConfig holds dependencies for the ExchangeUseCase.
type ExchangeConfig struct {
	TxManager TransactionManager
	Ledger    *LedgerUseCase
	TradeLog  *TradeLogUseCase
	IDGen     IDGenerator
	Retrier   Retrier
	Clock     Clock
	Metrics   Metrics
	Logger    zerolog.Logger

	Timeout          time.Duration // Bound on lock waits and storage calls
	MaxItems         int           // Upper bound on items per trade
	RecordRejections bool          // Append rejected trades to the trade log
}

// ExchangeUseCase executes two-party trades as single atomic units.
type ExchangeUseCase struct {
	txManager        TransactionManager
	ledger           *LedgerUseCase
	tradeLog         *TradeLogUseCase
	idGen            IDGenerator
	retrier          Retrier
	clock            Clock
	metrics          Metrics
	logger           zerolog.Logger
	timeout          time.Duration
	maxItems         int
	recordRejections bool
}

// NewExchangeUseCase creates a new ExchangeUseCase.
func NewExchangeUseCase(cfg ExchangeConfig) *ExchangeUseCase {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Retrier == nil {
		cfg.Retrier = noRetry{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTradeTimeout
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = domain.MaxTradeItems
	}

	return &ExchangeUseCase{
		txManager:        cfg.TxManager,
		ledger:           cfg.Ledger,
		tradeLog:         cfg.TradeLog,
		idGen:            cfg.IDGen,
		retrier:          cfg.Retrier,
		clock:            cfg.Clock,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger,
		timeout:          cfg.Timeout,
		maxItems:         cfg.MaxItems,
		recordRejections: cfg.RecordRejections,
	}
}

// ExecuteTrade moves req.Items from sender to receiver. Either both inventory
// mutations and the committed trade record become visible together, or none
// of them do.
func (uc *ExchangeUseCase) ExecuteTrade(ctx context.Context, req domain.TradeRequest) (*domain.TradeRecord, error) {
	start := time.Now()

	// 0. Validate shape before touching any state
	if err := req.Validate(uc.maxItems); err != nil {
		uc.metrics.TradeRejected(domain.CodeInvalidRequest)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	var record *domain.TradeRecord
	err := uc.retrier.Retry(ctx, func() error {
		var commitErr error
		record, commitErr = uc.commit(ctx, req)
		return commitErr
	})
	if err == nil {
		uc.ledger.Invalidate(ctx, req.SenderID, req.ReceiverID)
		uc.metrics.TradeCommitted(len(req.Items), time.Since(start))
		uc.logger.Info().
			Int64("sequence", record.Sequence).
			Str("trade_id", record.ID).
			Str("sender_id", req.SenderID).
			Str("receiver_id", req.ReceiverID).
			Int("items", len(req.Items)).
			Msg("trade committed")
		return record, nil
	}

	code := domain.CodeOf(err)
	switch code {
	case domain.CodeAccountNotFound, domain.CodeInsufficientInventory:
		uc.metrics.TradeRejected(code)
		return nil, uc.reject(ctx, req, err)
	case domain.CodeStorageUnavailable:
		uc.metrics.TradeFailed(code)
		uc.logger.Warn().Err(err).
			Str("code", string(code)).
			Str("sender_id", req.SenderID).
			Str("receiver_id", req.ReceiverID).
			Msg("trade aborted by storage failure")
		return nil, err
	default:
		uc.metrics.TradeFailed(domain.CodeInternalInconsistency)
		uc.logger.Error().Err(err).
			Str("code", string(domain.CodeInternalInconsistency)).
			Str("sender_id", req.SenderID).
			Str("receiver_id", req.ReceiverID).
			Msg("trade aborted by internal inconsistency")
		return nil, err
	}
}

func (uc *ExchangeUseCase) commit(ctx context.Context, req domain.TradeRequest) (*domain.TradeRecord, error) {
	// 1. Lock both accounts in ID order (DEADLOCK PREVENTION)
	unlock, err := uc.ledger.Lock(ctx, req.SenderID, req.ReceiverID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 2. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError("begin", err)
	}
	defer tx.Rollback(ctx)

	// 3. Load fresh state under the held locks
	accounts, err := uc.ledger.LoadForUpdate(ctx, tx, req.SenderID, req.ReceiverID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	// 4. Debit sender, credit receiver
	if err := uc.ledger.DebitTx(ctx, tx, accounts[req.SenderID], req.Items, now); err != nil {
		return nil, err
	}

	if err := uc.ledger.CreditTx(ctx, tx, accounts[req.ReceiverID], req.Items, now); err != nil {
		return nil, err
	}

	// 5. Record the trade in the same transaction
	record := uc.newRecord(req, domain.TradeCommitted, nil, now)
	if err := uc.tradeLog.AppendTx(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("%w: trade log append failed after ledger mutation: %w", domain.ErrInternalInconsistency, err)
	}

	// 6. Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit", err)
	}

	return record, nil
}

// reject records a rejected trade once locks are released. A failed append
// is returned alongside the rejection, never swallowed.
func (uc *ExchangeUseCase) reject(ctx context.Context, req domain.TradeRequest, cause error) error {
	uc.logger.Info().
		Str("code", string(domain.CodeOf(cause))).
		Str("sender_id", req.SenderID).
		Str("receiver_id", req.ReceiverID).
		Str("reason", cause.Error()).
		Msg("trade rejected")

	if !uc.recordRejections {
		return cause
	}

	record := uc.newRecord(req, domain.TradeRejected, cause, uc.clock.Now())
	if err := uc.tradeLog.Append(ctx, record); err != nil {
		uc.logger.Error().Err(err).
			Str("trade_id", record.ID).
			Msg("failed to record rejected trade")
		return errors.Join(cause, err)
	}

	return cause
}

func (uc *ExchangeUseCase) newRecord(req domain.TradeRequest, outcome domain.TradeOutcome, cause error, at time.Time) *domain.TradeRecord {
	items := make([]string, len(req.Items))
	copy(items, req.Items)

	record := &domain.TradeRecord{
		ID:         uc.idGen.Generate(),
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Items:      items,
		Outcome:    outcome,
		RecordedAt: at,
	}

	if cause != nil {
		record.Reason = domain.CodeOf(cause)
		record.Detail = cause.Error()
	}

	return record
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]bool, len(ids))

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	sort.Strings(out)
	return out
}
