package sharelink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharespace-media/backend/internal/cache"
)

const redisKeyPrefix = "share_link:"

// RedisStore persists tokens in Redis. GETDEL gives the atomic
// get-and-remove primitive directly, and a configured TTL is enforced
// natively by key expiry instead of sweeping.
type RedisStore struct {
	client *cache.RedisClient
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed token store
func NewRedisStore(client *cache.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Put stores a token as a JSON value, with native expiry when a TTL is set
func (r *RedisStore) Put(ctx context.Context, t Token) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode share token: %w", err)
	}

	key := redisKeyPrefix + t.ID
	if r.ttl > 0 {
		return r.client.SetEx(ctx, key, data, r.ttl)
	}
	return r.client.Set(ctx, key, data)
}

// GetAndDelete removes and returns a token via GETDEL
func (r *RedisStore) GetAndDelete(ctx context.Context, id string) (Token, error) {
	data, err := r.client.GetDel(ctx, redisKeyPrefix+id)
	if errors.Is(err, redis.Nil) {
		return Token{}, ErrNotFound
	}
	if err != nil {
		return Token{}, fmt.Errorf("failed to read share token: %w", err)
	}

	var t Token
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return Token{}, fmt.Errorf("failed to decode share token: %w", err)
	}
	return t, nil
}

// DeleteOlderThan is a no-op: Redis expires keys natively
func (r *RedisStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}
