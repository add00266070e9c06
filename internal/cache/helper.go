package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hackit/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// GetJSON decodes the value at key into dest. It reports false on a miss or
// when Redis is not configured. An entry that no longer decodes is dropped.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		client.Del(ctx, key)
		return false, err
	}
	return true, nil
}

// SetJSON stores v at key for ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, raw, ttl).Err()
}

// Aside is a read-through lookup: a hit fills dest from Redis, a miss runs
// load (which fills dest) and caches the result. Redis failures never fail
// the lookup; load errors are returned and nothing is cached.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	found, err := GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		middleware.CacheLookups.WithLabelValues("error").Inc()
	case found:
		middleware.CacheLookups.WithLabelValues("hit").Inc()
		return nil
	default:
		middleware.CacheLookups.WithLabelValues("miss").Inc()
	}

	if err := load(); err != nil {
		return err
	}
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// TakeOnce reads and deletes key in one round trip (GETDEL), so a value can
// be redeemed at most once.
func TakeOnce(ctx context.Context, rdb *redis.Client, key string) (value string, ok bool, err error) {
	if rdb == nil {
		return "", false, errors.New("redis client is nil")
	}
	value, err = rdb.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
