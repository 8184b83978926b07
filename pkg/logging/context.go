package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

// loggerKey is the context key for the logger.
const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithWatch returns a child logger annotated with the watch name.
// An empty name adds no field.
func WithWatch(logger *zerolog.Logger, name string) *zerolog.Logger {
	if name == "" {
		return logger
	}
	child := logger.With().Str("watch", name).Logger()
	return &child
}

// WithSelector returns a child logger annotated with the selector
// name being observed.
func WithSelector(logger *zerolog.Logger, name string) *zerolog.Logger {
	child := logger.With().Str("selector", name).Logger()
	return &child
}
