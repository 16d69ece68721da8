package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process EventStore. Suitable for local runs and
// tests; state does not survive a restart and is not shared across
// instances, so production deploys should use redis/upstash/postgres.
type MemoryStore struct {
	mu       sync.Mutex
	seen     map[string]time.Time // key -> expiry
	counters map[string]counterEntry
	now      func() time.Time
}

type counterEntry struct {
	value     int64
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seen:     map[string]time.Time{},
		counters: map[string]counterEntry{},
		now:      time.Now,
	}
}

// MarkSeen implements EventStore. The mutex makes the check-then-set atomic.
func (m *MemoryStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if exp, ok := m.seen[key]; ok && exp.After(now) {
		return false, nil
	}
	m.seen[key] = now.Add(ttl)
	return true, nil
}

// IncrCounter implements EventStore.
func (m *MemoryStore) IncrCounter(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry := m.counters[key]
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(now) {
		entry = counterEntry{}
	}
	entry.value++
	entry.expiresAt = now.Add(ttl)
	m.counters[key] = entry
	return entry.value, nil
}

// GetCounter implements EventStore.
func (m *MemoryStore) GetCounter(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.counters[key]
	if !ok || (!entry.expiresAt.IsZero() && !entry.expiresAt.After(m.now())) {
		return 0, nil
	}
	return entry.value, nil
}

// Ping implements EventStore.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close implements EventStore.
func (m *MemoryStore) Close() {}
