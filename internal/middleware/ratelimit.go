package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"hackit/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// limiterBypassed reports whether APP_ENV is one where limits are off.
// An unset APP_ENV counts as development.
func limiterBypassed() bool {
	switch strings.ToLower(os.Getenv("APP_ENV")) {
	case "", "test", "development", "stress":
		return true
	}
	return false
}

type window struct {
	count int64
	reset time.Duration
}

// hit counts one request in the fixed window for key. The counter is created
// with its TTL in the same MULTI as the increment, so a crash between the
// two can never leave an immortal counter.
func hit(ctx context.Context, rdb *redis.Client, key string, size time.Duration) (window, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, size)
		incr = pipe.Incr(ctx, key)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return window{}, err
	}
	reset := ttl.Val()
	if reset <= 0 {
		reset = size
	}
	return window{count: incr.Val(), reset: reset}, nil
}

// CheckRateLimit counts one request for id against resource and reports
// whether it is within limit per window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, size time.Duration) (bool, error) {
	if limiterBypassed() {
		return true, nil
	}
	if rdb == nil {
		return false, errors.New("redis client is nil")
	}
	w, err := hit(ctx, rdb, fmt.Sprintf("rl:%s:%s", resource, id), size)
	if err != nil {
		return false, err
	}
	return w.count <= int64(limit), nil
}

// RateLimit limits each caller to limit requests per window. Callers are the
// authenticated uid when present, otherwise the remote IP. The optional name
// groups routes under one counter; it defaults to the request path.
func RateLimit(rdb *redis.Client, limit int, size time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, size, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit Redis failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, size time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiterBypassed() {
			return c.Next()
		}

		resource := c.Path()
		if len(name) > 0 && name[0] != "" {
			resource = name[0]
		}
		caller := "ip:" + c.IP()
		if uid := UserID(c); uid != "" {
			caller = "user:" + uid
		}

		if rdb == nil {
			return unavailable(c, policy, resource, errors.New("redis client is nil"))
		}
		w, err := hit(c.UserContext(), rdb, fmt.Sprintf("rl:%s:%s", resource, caller), size)
		if err != nil {
			return unavailable(c, policy, resource, err)
		}

		remaining := int64(limit) - w.count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if w.count > int64(limit) {
			RateLimited.WithLabelValues(resource).Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(w.reset.Seconds()))))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
				"code":  models.CodeRateLimited,
			})
		}
		return c.Next()
	}
}

func unavailable(c *fiber.Ctx, policy FailPolicy, resource string, err error) error {
	if policy == FailOpen {
		return c.Next()
	}
	Logger.WarnContext(c.UserContext(), "rate limiter unavailable, rejecting",
		slog.String("resource", resource),
		slog.String("error", err.Error()),
	)
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "rate limit unavailable",
		"code":  models.CodeUnavailable,
	})
}
