package common

import "context"

// loggerContextKey is the context key for the per-call logger.
type loggerContextKey struct{}

// WithLogger returns a new context carrying logger.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// LoggerFrom returns the logger attached to ctx, or fallback if none is set.
func LoggerFrom(ctx context.Context, fallback *Logger) *Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(*Logger); ok && l != nil {
		return l
	}
	return fallback
}
