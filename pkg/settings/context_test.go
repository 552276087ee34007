package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunContext(t *testing.T) {
	run := &Run{NoColor: true, Locale: "de"}
	ctx := IntoContext(context.Background(), run)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, run, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(context.WithValue(context.Background(), runContextKey, "de"))
	assert.False(t, ok, "values of another type are ignored")
}

func TestNoColorFromContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want bool
	}{
		{name: "no run attached", ctx: context.Background(), want: false},
		{name: "nil run", ctx: IntoContext(context.Background(), nil), want: false},
		{name: "color enabled", ctx: IntoContext(context.Background(), &Run{Locale: "fr"}), want: false},
		{name: "color disabled", ctx: IntoContext(context.Background(), &Run{NoColor: true}), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NoColorFromContext(tt.ctx))
		})
	}
}
