// Package middleware provides request logging, tracing, auth, rate limiting and metrics for the fiber app.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"hackit/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Logger is the application logger. It shares its handler with
// observability.GlobalLogger so request ids show up in every layer.
var Logger = observability.GlobalLogger

// Context keys shared with the observability loggers.
const (
	RequestIDKey = observability.RequestIDKey
	UserIDKey    = observability.UserIDKey
	TraceIDKey   = observability.TraceIDKey
)

// quietPaths are polled by probes and scrapers; they log at debug level.
var quietPaths = map[string]bool{
	"/health":       true,
	"/health/live":  true,
	"/health/ready": true,
	"/metrics":      true,
}

// ContextMiddleware copies the request id, caller uid and trace id from
// fiber locals onto the user context so service-layer logs carry them.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for key, local := range map[any]string{
			RequestIDKey: "requestid",
			UserIDKey:    "userID",
			TraceIDKey:   "traceID",
		} {
			if v, ok := c.Locals(local).(string); ok && v != "" {
				ctx = context.WithValue(ctx, key, v)
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger logs one line per request once the handler chain returns.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		ctx := c.UserContext()
		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}
		if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
			attrs = append(attrs, slog.String("user_agent", ua))
		}

		level := slog.LevelInfo
		msg := "request"
		switch {
		case err != nil:
			level, msg = slog.LevelError, "request failed"
			attrs = append(attrs, slog.String("error", err.Error()))
		case status >= fiber.StatusInternalServerError:
			level = slog.LevelWarn
		case quietPaths[c.Path()]:
			level = slog.LevelDebug
		}
		Logger.LogAttrs(ctx, level, msg, attrs...)
		return err
	}
}
