// Package ctxlog threads a slog.Logger through the translation pipeline
// via context.Context.
package ctxlog

import (
	"context"
	"log/slog"
)

// contextKey is unexported so no other package can collide with it.
type contextKey struct{}

// WithLogger returns a context that carries logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger carried by ctx, or slog.Default when the
// context carries none. Pipeline stages may therefore log unconditionally.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
