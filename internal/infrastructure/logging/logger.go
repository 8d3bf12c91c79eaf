package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/fintally/claimcore/internal/domain"
)

// Logger wraps slog.Logger and stamps log lines with the authenticated
// identity carried in the request context. Library code (payment rails, the
// outbox dispatcher) logs through it so payouts and events can be traced back
// to the caller that triggered them.
type Logger struct {
	*slog.Logger
}

// New creates a structured logger writing to stdout.
func New(level slog.Level, format string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger carrying the context's identity fields.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	logger := l.Logger

	if identity, ok := domain.IdentityFromContext(ctx); ok && identity.ID != "" {
		logger = logger.With("subject_id", identity.ID)
	}

	return logger
}

// InfoCtx logs an info message with the context's identity fields.
func (l *Logger) InfoCtx(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Info(msg, args...)
}

// ErrorCtx logs an error message with the context's identity fields.
func (l *Logger) ErrorCtx(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Error(msg, args...)
}

// WarnCtx logs a warning message with the context's identity fields.
func (l *Logger) WarnCtx(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Warn(msg, args...)
}

// ParseLevel parses a log level string.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
