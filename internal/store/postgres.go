package store

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is an EventStore backed by Postgres. Useful when the
// deploy already runs a database and no Redis is available; expiry is
// enforced at read/write time since Postgres has no native TTL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if the
// database is unreachable. The schema is applied on startup.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	st := &PostgresStore{pool: pool}
	if err := st.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "apply schema")
	}
	return st, nil
}

// ensureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// MarkSeen inserts the key, or takes it over when the previous marker
// has expired. The conditional upsert makes the claim atomic: exactly
// one of two concurrent calls gets a row back.
func (p *PostgresStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	var one int
	err := p.pool.QueryRow(ctx, `
		INSERT INTO relay_seen(key, expires_at)
		VALUES ($1, now() + make_interval(secs => $2))
		ON CONFLICT (key) DO UPDATE SET expires_at = EXCLUDED.expires_at
		WHERE relay_seen.expires_at <= now()
		RETURNING 1
	`, key, ttl.Seconds()).Scan(&one)

	if err == nil {
		return true, nil
	}
	// A live duplicate produces "no rows in result set" because
	// RETURNING returns nothing.
	if err.Error() == "no rows in result set" {
		return false, nil
	}
	return false, err
}

// IncrCounter upserts the counter row, resetting it when the previous
// window has expired.
func (p *PostgresStore) IncrCounter(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var value int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO relay_counters(key, value, expires_at)
		VALUES ($1, 1, now() + make_interval(secs => $2))
		ON CONFLICT (key) DO UPDATE SET
			value = CASE WHEN relay_counters.expires_at <= now() THEN 1
			             ELSE relay_counters.value + 1 END,
			expires_at = EXCLUDED.expires_at
		RETURNING value
	`, key, ttl.Seconds()).Scan(&value)

	return value, err
}

// GetCounter implements EventStore.
func (p *PostgresStore) GetCounter(ctx context.Context, key string) (int64, error) {
	var value int64
	err := p.pool.QueryRow(ctx, `
		SELECT value FROM relay_counters
		WHERE key = $1 AND expires_at > now()
	`, key).Scan(&value)

	if err != nil {
		if err.Error() == "no rows in result set" {
			return 0, nil
		}
		return 0, err
	}
	return value, nil
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}
