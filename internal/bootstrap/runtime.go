// Package bootstrap wires the process-level runtime shared by the API server
// and the operator commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hackit/internal/cache"
	"hackit/internal/config"
	"hackit/internal/database"
	"hackit/internal/middleware"
	"hackit/internal/observability"
	"hackit/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema leaves the schema untouched (cmd/migrate manages it itself).
	SkipSchema bool
	// SeedDemo writes the canonical demo feed after the schema is applied.
	SeedDemo bool
}

// Runtime holds the shared connections and the tracer shutdown hook.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime connects to DB and Redis, applies the schema and optionally
// seeds the demo feed. Redis may be nil when unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "hackit-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if !opts.SkipSchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("schema apply failed: %w", err)
		}
	}

	rdb, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "continuing without redis", slog.String("error", err.Error()))
	}
	cache.SetClient(rdb)

	if opts.SeedDemo {
		report, err := seed.NewSeeder(db, seed.Options{}).Canonical()
		if err != nil {
			return nil, fmt.Errorf("failed to seed demo feed: %w", err)
		}
		middleware.Logger.Info("demo feed ensured", slog.String("report", report.String()))
	}

	return &Runtime{DB: db, Redis: rdb, shutdownTracing: shutdown}, nil
}

// SeedDemoByDefault reports whether an environment seeds the demo feed on boot.
func SeedDemoByDefault(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "preview":
		return true
	default:
		return false
	}
}

// Close flushes traces and closes the connections.
func (r *Runtime) Close(ctx context.Context) error {
	var firstErr error
	if r.shutdownTracing != nil {
		if err := r.shutdownTracing(ctx); err != nil {
			firstErr = err
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := database.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
