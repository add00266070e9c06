// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey string

// Context keys read by the logger. Request middleware stores them on the
// request's user context.
const (
	RequestIDKey ctxKey = "request_id"
	UserIDKey    ctxKey = "user_id"
	TraceIDKey   ctxKey = "trace_id"
)

// GlobalLogger is the process logger. Records pick up request, user and trace
// ids from the context they are logged with.
var GlobalLogger = NewLogger(os.Stdout, os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

// NewLogger returns a context-aware slog logger. Production environments log
// JSON; everything else logs logfmt-style text.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(env) {
	case "production", "prod", "preview":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(contextHandler{handler})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, k := range []struct {
		key  ctxKey
		attr string
	}{
		{RequestIDKey, "request_id"},
		{UserIDKey, "user_id"},
		{TraceIDKey, "trace_id"},
	} {
		if v, ok := ctx.Value(k.key).(string); ok && v != "" {
			r.AddAttrs(slog.String(k.attr, v))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

// RepoLogger records writes made by a repository. Writes log at debug level;
// failures log at error level.
type RepoLogger struct {
	logger *slog.Logger
}

// NewRepoLogger returns a logger tagged with the table it writes to.
func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{logger: GlobalLogger.With(slog.String("table", table))}
}

func (l *RepoLogger) write(ctx context.Context, op string, attrs []any) {
	l.logger.DebugContext(ctx, "repository "+op, append([]any{slog.String("operation", op)}, attrs...)...)
}

// LogCreate logs an insert. attrs are slog key/value pairs.
func (l *RepoLogger) LogCreate(ctx context.Context, attrs ...any) { l.write(ctx, "create", attrs) }

// LogUpdate logs an update.
func (l *RepoLogger) LogUpdate(ctx context.Context, attrs ...any) { l.write(ctx, "update", attrs) }

// LogDelete logs a delete.
func (l *RepoLogger) LogDelete(ctx context.Context, attrs ...any) { l.write(ctx, "delete", attrs) }

// LogError logs a failed repository operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, op string) {
	l.logger.ErrorContext(ctx, "repository error",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// WSLogger records websocket connection events for one hub.
type WSLogger struct {
	logger *slog.Logger
}

// NewWSLogger returns a logger tagged with the hub name.
func NewWSLogger(hub string) *WSLogger {
	return &WSLogger{logger: GlobalLogger.With(slog.String("hub", hub))}
}

func (l *WSLogger) LogConnect(ctx context.Context, userID string) {
	l.logger.InfoContext(ctx, "websocket connected", slog.String("user_id", userID))
}

func (l *WSLogger) LogDisconnect(ctx context.Context, userID, reason string) {
	l.logger.InfoContext(ctx, "websocket disconnected",
		slog.String("user_id", userID),
		slog.String("reason", reason),
	)
}

// LogError logs a failed read, write or close on a connection.
func (l *WSLogger) LogError(ctx context.Context, userID string, err error, stage string) {
	l.logger.WarnContext(ctx, "websocket error",
		slog.String("user_id", userID),
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// LogLifecycle logs hub-level events such as shutdown.
func (l *WSLogger) LogLifecycle(ctx context.Context, event string, attrs ...any) {
	l.logger.InfoContext(ctx, "websocket "+event, attrs...)
}
