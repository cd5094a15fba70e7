package tradefeed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/barter/internal/domain"
)

// Source reads trade records in ascending sequence order.
type Source interface {
	List(ctx context.Context, filter domain.TradeFilter) ([]*domain.TradeRecord, error)
}

// Publisher delivers trade events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event domain.TradeEvent) error
}

// Metrics receives feed observations.
type Metrics interface {
	Published(n int)
	PublishFailed()
}

// Config for Feed.
type Config struct {
	Source     Source
	Publisher  Publisher
	Metrics    Metrics
	Logger     zerolog.Logger
	BatchSize  int           // Number of records to fetch per batch
	Interval   time.Duration // Polling interval
	StartAfter int64         // Sequence already delivered before start
}

// Feed tails the trade log and publishes every record exactly in sequence
// order. Delivery is at least once: a failed publish is retried on the next
// tick and nothing after it is sent until it succeeds.
type Feed struct {
	source    Source
	publisher Publisher
	metrics   Metrics
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
	cursor    int64
}

// New creates a new Feed.
func New(cfg Config) *Feed {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}

	return &Feed{
		source:    cfg.Source,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		cursor:    cfg.StartAfter,
	}
}

// Cursor returns the last published sequence.
func (f *Feed) Cursor() int64 {
	return f.cursor
}

// Start runs the feed until ctx is cancelled.
func (f *Feed) Start(ctx context.Context) error {
	f.logger.Info().
		Int("batch_size", f.batchSize).
		Dur("interval", f.interval).
		Int64("cursor", f.cursor).
		Msg("trade feed started")

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	// Process immediately on start
	f.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			f.logger.Info().Int64("cursor", f.cursor).Msg("trade feed shutting down")
			return ctx.Err()
		case <-ticker.C:
			f.drain(ctx)
		}
	}
}

// drain publishes full batches back to back until the log is caught up.
func (f *Feed) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := f.processBatch(ctx)
		if err != nil {
			f.logger.Error().Err(err).Int64("cursor", f.cursor).Msg("error processing trade feed")
			return
		}
		if n < f.batchSize {
			return
		}
	}
}

// processBatch publishes one batch and returns how many records it read.
func (f *Feed) processBatch(ctx context.Context) (int, error) {
	records, err := f.source.List(ctx, domain.TradeFilter{
		AfterSequence: f.cursor,
		Limit:         f.batchSize,
	})
	if err != nil {
		return 0, err
	}

	published := 0
	defer func() {
		if published > 0 {
			f.metrics.Published(published)
		}
	}()

	for _, record := range records {
		event := domain.NewTradeEvent(record)
		if err := f.publisher.Publish(ctx, event); err != nil {
			f.metrics.PublishFailed()
			f.logger.Warn().Err(err).
				Int64("sequence", record.Sequence).
				Str("trade_id", record.ID).
				Msg("failed to publish trade event")
			return len(records), err
		}

		f.cursor = record.Sequence
		published++
	}

	return len(records), nil
}

type nopMetrics struct{}

func (nopMetrics) Published(int) {}
func (nopMetrics) PublishFailed() {}
