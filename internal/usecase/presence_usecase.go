package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/barter/internal/domain"
)

// PresenceUseCase tracks which accounts have sent a heartbeat within the TTL.
type PresenceUseCase struct {
	store   PresenceStore
	clock   Clock
	ttl     time.Duration
	metrics Metrics
	logger  zerolog.Logger
}

// NewPresenceUseCase creates a new PresenceUseCase.
func NewPresenceUseCase(store PresenceStore, clock Clock, ttl time.Duration, metrics Metrics, logger zerolog.Logger) *PresenceUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl <= 0 {
		ttl = domain.DefaultPresenceTTL
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &PresenceUseCase{
		store:   store,
		clock:   clock,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// TTL returns the presence window.
func (uc *PresenceUseCase) TTL() time.Duration {
	return uc.ttl
}

// Heartbeat marks the account as seen now.
func (uc *PresenceUseCase) Heartbeat(ctx context.Context, accountID string) error {
	if strings.TrimSpace(accountID) == "" {
		return fmt.Errorf("%w: account id is required", domain.ErrInvalidRequest)
	}

	if err := uc.store.Touch(ctx, accountID, uc.clock.Now()); err != nil {
		return storageError("touch presence", err)
	}

	uc.metrics.Heartbeat()
	return nil
}

// LastSeen returns the presence entry for the account and whether one exists.
func (uc *PresenceUseCase) LastSeen(ctx context.Context, accountID string) (domain.PresenceEntry, bool, error) {
	at, ok, err := uc.store.LastSeen(ctx, accountID)
	if err != nil {
		return domain.PresenceEntry{}, false, storageError("last seen", err)
	}
	return domain.PresenceEntry{AccountID: accountID, LastSeen: at}, ok, nil
}

// IsOnline reports whether the account sent a heartbeat within the TTL.
// Accounts that never sent one are offline.
func (uc *PresenceUseCase) IsOnline(ctx context.Context, accountID string) (bool, error) {
	entry, ok, err := uc.LastSeen(ctx, accountID)
	if err != nil || !ok {
		return false, err
	}
	return entry.Online(uc.clock.Now(), uc.ttl), nil
}

// ListOnline returns the sorted IDs of accounts within the TTL. Stale entries
// are evicted on the way; eviction failure does not fail the listing.
func (uc *PresenceUseCase) ListOnline(ctx context.Context) ([]string, error) {
	now := uc.clock.Now()
	cutoff := now.Add(-uc.ttl)

	if _, err := uc.evict(ctx, cutoff); err != nil {
		uc.logger.Warn().Err(err).Msg("lazy presence eviction failed")
	}

	entries, err := uc.store.ListSince(ctx, cutoff)
	if err != nil {
		return nil, storageError("list presence", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Online(now, uc.ttl) {
			ids = append(ids, e.AccountID)
		}
	}
	sort.Strings(ids)

	uc.metrics.OnlineAccounts(len(ids))
	return ids, nil
}

// Sweep evicts every entry older than the TTL.
func (uc *PresenceUseCase) Sweep(ctx context.Context) (int, error) {
	return uc.evict(ctx, uc.clock.Now().Add(-uc.ttl))
}

func (uc *PresenceUseCase) evict(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := uc.store.EvictBefore(ctx, cutoff)
	if err != nil {
		return 0, storageError("evict presence", err)
	}
	if n > 0 {
		uc.metrics.PresenceEvicted(n)
	}
	return n, nil
}

// Run sweeps stale entries every interval until ctx is cancelled.
func (uc *PresenceUseCase) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = domain.HeartbeatInterval
	}

	uc.logger.Info().Dur("interval", interval).Dur("ttl", uc.ttl).Msg("presence sweeper started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info().Msg("presence sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			n, err := uc.Sweep(ctx)
			if err != nil {
				uc.logger.Error().Err(err).Msg("presence sweep failed")
				continue
			}
			if n > 0 {
				uc.logger.Debug().Int("evicted", n).Msg("presence sweep")
			}
		}
	}
}
