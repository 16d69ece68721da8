package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/rueidis"
)

// RedisStore is an EventStore backed by a Redis server via rueidis.
type RedisStore struct {
	client rueidis.Client
}

// NewRedisStore connects to Redis and fails fast if it is unreachable.
func NewRedisStore(addr string) (*RedisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect redis")
	}
	return &RedisStore{client: client}, nil
}

// MarkSeen uses SET NX EX: one round trip, atomic, so two concurrent
// deliveries of the same event_id cannot both observe "absent".
func (s *RedisStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	cmd := s.client.B().Set().Key(key).Value("1").Nx().Ex(ttl).Build()
	err := s.client.Do(ctx, cmd).Error()
	if err != nil {
		// SET NX answers nil when the key already existed.
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "set nx")
	}
	return true, nil
}

// IncrCounter implements EventStore. INCR creates the key at 0, then the
// expiry is (re)applied so the counter outlives its calendar day by the
// configured TTL rather than forever.
func (s *RedisStore) IncrCounter(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	value, err := s.client.Do(ctx, s.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, errors.Wrap(err, "incr")
	}

	expire := s.client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build()
	if err := s.client.Do(ctx, expire).Error(); err != nil {
		return value, errors.Wrap(err, "expire")
	}
	return value, nil
}

// GetCounter implements EventStore.
func (s *RedisStore) GetCounter(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsInt64()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "get")
	}
	return value, nil
}

// Ping implements EventStore.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close implements EventStore.
func (s *RedisStore) Close() {
	s.client.Close()
}
