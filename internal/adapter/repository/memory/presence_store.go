package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iho/barter/internal/domain"
)

// PresenceStore implements usecase.PresenceStore with one atomic timestamp
// per account, so heartbeats for different accounts never contend. Touches
// share evictMu; only eviction takes it exclusively.
type PresenceStore struct {
	evictMu sync.RWMutex
	entries sync.Map // account ID -> *atomic.Int64 (unix nanos)
}

// NewPresenceStore creates an empty PresenceStore.
func NewPresenceStore() *PresenceStore {
	return &PresenceStore{}
}

// Touch stores at unless a later timestamp is already recorded.
func (s *PresenceStore) Touch(ctx context.Context, accountID string, at time.Time) error {
	nanos := at.UnixNano()

	s.evictMu.RLock()
	defer s.evictMu.RUnlock()

	v, _ := s.entries.LoadOrStore(accountID, new(atomic.Int64))
	ts := v.(*atomic.Int64)

	for {
		current := ts.Load()
		if current >= nanos {
			return nil
		}
		if ts.CompareAndSwap(current, nanos) {
			return nil
		}
	}
}

// LastSeen returns the last heartbeat for the account.
func (s *PresenceStore) LastSeen(ctx context.Context, accountID string) (time.Time, bool, error) {
	v, ok := s.entries.Load(accountID)
	if !ok {
		return time.Time{}, false, nil
	}

	nanos := v.(*atomic.Int64).Load()
	if nanos == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

// ListSince returns entries seen at or after cutoff.
func (s *PresenceStore) ListSince(ctx context.Context, cutoff time.Time) ([]domain.PresenceEntry, error) {
	threshold := cutoff.UnixNano()

	entries := make([]domain.PresenceEntry, 0)
	s.entries.Range(func(key, value any) bool {
		nanos := value.(*atomic.Int64).Load()
		if nanos != 0 && nanos >= threshold {
			entries = append(entries, domain.PresenceEntry{
				AccountID: key.(string),
				LastSeen:  time.Unix(0, nanos).UTC(),
			})
		}
		return true
	})

	return entries, nil
}

// EvictBefore removes entries last seen before cutoff.
func (s *PresenceStore) EvictBefore(ctx context.Context, cutoff time.Time) (int, error) {
	threshold := cutoff.UnixNano()

	s.evictMu.Lock()
	defer s.evictMu.Unlock()

	evicted := 0
	s.entries.Range(func(key, value any) bool {
		if value.(*atomic.Int64).Load() < threshold {
			s.entries.Delete(key)
			evicted++
		}
		return true
	})

	return evicted, nil
}
