package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the Redis-backed Store for multi-instance deployments.
// Keys carry the cool-down as their TTL, so expiry does the forgetting and
// Acquire reduces to SET NX PX. Cross-key operations never contend.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed throttle store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "alert_throttle:"}
}

func (r *RedisStore) redisKey(key string) string {
	return r.prefix + key
}

func (r *RedisStore) LastSent(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := r.client.Get(ctx, r.redisKey(key)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("throttle get %s: %w", key, err)
	}
	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("throttle parse %s: %w", key, err)
	}
	return time.UnixMilli(millis), true, nil
}

func (r *RedisStore) RecordSend(ctx context.Context, key string, now time.Time, ttl time.Duration) error {
	err := r.client.Set(ctx, r.redisKey(key), now.UnixMilli(), ttl).Err()
	if err != nil {
		return fmt.Errorf("throttle set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Acquire(ctx context.Context, key string, now time.Time, cooldown time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.redisKey(key), now.UnixMilli(), cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("throttle acquire %s: %w", key, err)
	}
	return ok, nil
}

func (r *RedisStore) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("throttle reset %s: %w", key, err)
	}
	return nil
}
