package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/barter/internal/domain"
)

// PresenceStore implements usecase.PresenceStore with one sorted set scored
// by last-seen unix milliseconds, so any number of server instances share a
// single view.
type PresenceStore struct {
	client *redis.Client
	key    string
}

// NewPresenceStore creates a new PresenceStore.
func NewPresenceStore(client *redis.Client) *PresenceStore {
	return &PresenceStore{
		client: client,
		key:    "presence:last_seen",
	}
}

// Touch records at unless a later heartbeat is already stored (ZADD GT).
func (s *PresenceStore) Touch(ctx context.Context, accountID string, at time.Time) error {
	return s.client.ZAddGT(ctx, s.key, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: accountID,
	}).Err()
}

// LastSeen returns the last heartbeat for the account.
func (s *PresenceStore) LastSeen(ctx context.Context, accountID string) (time.Time, bool, error) {
	score, err := s.client.ZScore(ctx, s.key, accountID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return fromScore(score), true, nil
}

// ListSince returns entries seen at or after cutoff.
func (s *PresenceStore) ListSince(ctx context.Context, cutoff time.Time) ([]domain.PresenceEntry, error) {
	members, err := s.client.ZRangeByScoreWithScores(ctx, s.key, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.PresenceEntry, 0, len(members))
	for _, m := range members {
		id, ok := m.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.PresenceEntry{AccountID: id, LastSeen: fromScore(m.Score)})
	}
	return entries, nil
}

// EvictBefore removes entries last seen before cutoff.
func (s *PresenceStore) EvictBefore(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := s.client.ZRemRangeByScore(ctx, s.key, "-inf", "("+strconv.FormatInt(cutoff.UnixMilli(), 10)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func fromScore(score float64) time.Time {
	return time.UnixMilli(int64(score)).UTC()
}
