package statusstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/batch-email-service/internal/models"
)

// Client is the subset of go-redis behaviour the store needs. Narrowing the
// dependency keeps tests free of a live server and admits *redis.Client,
// *redis.ClusterClient and redis.UniversalClient alike.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisStore implements Store on top of a Redis connection. Statuses are
// written with no TTL: the ledger persists until overwritten and is never
// deleted by this subsystem.
type RedisStore struct {
	client Client
}

// NewRedisStore wraps an already-constructed client. The caller owns the
// client lifecycle; this type never closes it.
func NewRedisStore(client Client) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("statusstore: redis client is required")
	}
	return &RedisStore{client: client}, nil
}

// Ping verifies connectivity, used at startup so a misconfigured endpoint
// fails fast instead of on the first batch.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return wrapUnavailable("ping", err)
	}
	return nil
}

// Get implements Store. A missing key is reported as absent, not an error.
func (s *RedisStore) Get(ctx context.Context, requestID, recipient string) (models.Status, bool, error) {
	raw, err := s.client.Get(ctx, Key(requestID, recipient)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapUnavailable("get", err)
	}
	return models.ParseStatus(raw), true, nil
}

// Set implements Store. Last write wins; expiration 0 means the record never
// expires.
func (s *RedisStore) Set(ctx context.Context, requestID, recipient string, status models.Status) error {
	if err := s.client.Set(ctx, Key(requestID, recipient), string(status), 0).Err(); err != nil {
		return wrapUnavailable("set", err)
	}
	return nil
}
