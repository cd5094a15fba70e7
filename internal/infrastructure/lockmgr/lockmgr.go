// Package lockmgr provides keyed exclusive locks acquired in a fixed global
// order, so callers naming the same keys in any order cannot deadlock.
package lockmgr

import (
	"context"
	"sort"
	"sync"
)

type entry struct {
	ch   chan struct{}
	refs int
}

// Manager hands out per-key exclusive locks. Entries exist only while some
// caller holds or waits for the key.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a Manager.
func New() *Manager {
	return &Manager{entries: make(map[string]*entry)}
}

// Lock acquires every key in ascending order. If ctx ends first, the keys
// already taken are released and ctx.Err() is returned.
func (m *Manager) Lock(ctx context.Context, keys ...string) (func(), error) {
	ordered := orderKeys(keys)

	held := make([]*entry, 0, len(ordered))
	for _, key := range ordered {
		e := m.acquireRef(key)

		select {
		case e.ch <- struct{}{}:
			held = append(held, e)
		case <-ctx.Done():
			m.releaseRef(key, e)
			m.unlock(ordered[:len(held)], held)
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.unlock(ordered, held) })
	}, nil
}

// Held reports how many keys currently have holders or waiters.
func (m *Manager) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manager) unlock(keys []string, held []*entry) {
	for i := len(held) - 1; i >= 0; i-- {
		<-held[i].ch
		m.releaseRef(keys[i], held[i])
	}
}

func (m *Manager) acquireRef(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *Manager) releaseRef(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

func orderKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}

	sort.Strings(out)
	return out
}
