package settings

import (
	"context"
)

type contextKey string

const (
	runContextKey contextKey = "mccw-run"
)

// IntoContext attaches the run options to ctx.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, runContextKey, s)
}

// FromContext returns the run options attached by IntoContext.
func FromContext(ctx context.Context) (*Run, bool) {
	s, ok := ctx.Value(runContextKey).(*Run)
	return s, ok
}

// NoColorFromContext reports whether colored output was disabled for this run.
func NoColorFromContext(ctx context.Context) bool {
	if s, ok := FromContext(ctx); ok && s != nil {
		return s.NoColor
	}
	return false
}
