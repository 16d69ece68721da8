// Package store abstracts the external key-value service holding dedup
// markers and daily counters. All backends expose the same three
// operations; MarkSeen is a single atomic set-if-absent wherever the
// backend supports it, which closes the check-then-act race between
// concurrent deliveries of the same event_id.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wederfonseca/achadinhododia/internal/config"
)

// EventStore is the dedup/counter store contract.
type EventStore interface {
	// MarkSeen records key as seen with the given expiry. Returns true
	// when this call was the first sighting, false when the key already
	// existed.
	MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IncrCounter increments key by one, creating it at zero, and
	// (re)applies the expiry. Returns the new value.
	IncrCounter(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// GetCounter reads key, returning 0 when absent.
	GetCounter(ctx context.Context, key string) (int64, error)

	// Ping validates the backend is reachable. Used by readiness.
	Ping(ctx context.Context) error

	// Close releases client resources.
	Close()
}

// New builds the store backend selected by configuration. Returns
// (nil, nil) for the "none" backend: a nil store means dedup and
// counting are disabled and every event forwards.
func New(cfg config.Config) (EventStore, error) {
	switch cfg.StoreBackend {
	case config.StoreNone:
		return nil, nil
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreRedis:
		return NewRedisStore(cfg.RedisAddr)
	case config.StoreUpstash:
		return NewUpstashStore(cfg.UpstashURL, cfg.UpstashToken), nil
	case config.StorePostgres:
		return NewPostgresStore(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
