package logging

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

type runIDKeyType struct{}

// NewRunID returns a new lexicographically sortable run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// ContextWithRunID stores the run ID on ctx.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKeyType{}, runID)
}

// RunIDFromContext returns the run ID stored on ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKeyType{}).(string); ok {
		return id
	}
	return ""
}

// GetOrGenerateRunID returns the run ID on ctx, or a fresh one.
func GetOrGenerateRunID(ctx context.Context) string {
	if id := RunIDFromContext(ctx); id != "" {
		return id
	}
	return NewRunID()
}

// WithRunID returns a child logger carrying the run ID field.
func WithRunID(logger zerolog.Logger, runID string) zerolog.Logger {
	return logger.With().Str(runIDKey, runID).Logger()
}

// FromContext returns the logger attached to ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
