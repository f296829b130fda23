// Package observability provides structured logging for the application.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// RequestID is the context key carrying the per-request correlation ID.
const RequestID LogContextKey = "request_id"

// WithRequestID returns a new context with the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestID, id)
}

// ExtractRequestID retrieves the request ID from the context, or "" if unset.
func ExtractRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestID).(string); ok {
		return id
	}
	return ""
}

// AuthEvent logs a security-relevant authentication event (signup, login,
// activation, password reset). Token plaintext must never be passed here.
func (l *Logger) AuthEvent(ctx context.Context, event string, userID uint, attrs ...any) {
	base := []any{
		slog.String("event", event),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("request_id", ExtractRequestID(ctx)),
	}
	l.InfoContext(ctx, "auth event", append(base, attrs...)...)
}
