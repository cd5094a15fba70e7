package domain

import "time"

const (
	// DefaultPresenceTTL is three missed heartbeats.
	DefaultPresenceTTL = 90 * time.Second
	// HeartbeatInterval is how often clients are expected to ping.
	HeartbeatInterval = 30 * time.Second
)

// PresenceEntry is the last heartbeat seen for an account.
type PresenceEntry struct {
	AccountID string
	LastSeen  time.Time
}

// Online reports whether the entry is still within ttl at now.
func (p PresenceEntry) Online(now time.Time, ttl time.Duration) bool {
	if p.LastSeen.IsZero() {
		return false
	}
	return now.Sub(p.LastSeen) <= ttl
}
