// Package cache holds the Redis client and the read-through helpers the
// repositories use. Every helper degrades to a no-op when Redis is unavailable.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hackit/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// errorCounter feeds failed commands into the redis_errors_total metric.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countError(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countError("pipeline", err)
		return err
	}
}

func countError(name string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.RedisErrors.WithLabelValues(name).Inc()
	}
}

// ParseOptions accepts either a redis:// URL or a bare host:port.
func ParseOptions(raw string) (*redis.Options, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("redis address is empty")
	}
	if !strings.Contains(raw, "://") {
		return &redis.Options{Addr: raw}, nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return opts, nil
}

// Connect dials Redis and pings it. The returned client is not installed as
// the package client; call SetClient for that.
func Connect(ctx context.Context, raw string) (*redis.Client, error) {
	opts, err := ParseOptions(raw)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// GetClient returns the package client, or nil when running without Redis.
func GetClient() *redis.Client {
	return client
}

// SetClient installs c as the package client and instruments it. A nil c
// switches the cache helpers off.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(errorCounter{})
	}
	client = c
}
