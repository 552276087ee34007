// Package widget renders categories as a row of balanced column lists and
// maintains the three per-instance display settings.
//
// The package is host-agnostic: items, persisted settings and wrapper markup
// are passed in explicitly, and the only output is markup.
package widget

import (
	"context"
	"errors"
	"io"
)

// ComponentID is the id base of the widget.
const ComponentID = "mccw"

// DefaultClassPrefix namespaces every emitted CSS class.
const DefaultClassPrefix = "mccw-"

// ErrCountUnavailable is returned by a CountResolver that has no count for an item.
var ErrCountUnavailable = errors.New("item count unavailable")

// Component is the contract a host adapter drives. Each method takes the
// settings and items explicitly; the component keeps no per-instance state.
type Component interface {
	ID() string
	Name() string
	Render(ctx context.Context, s Settings, items []Category) string
	Display(ctx context.Context, w io.Writer, args Args, s Settings, items []Category) error
	RenderForm(instanceID string, s Settings) string
	ApplySettings(raw map[string]string, previous Settings) Settings
}

// CountResolver looks up the item count shown next to a category. Lookups
// are keyed by the category ID.
type CountResolver interface {
	ResolveCount(ctx context.Context, item Category) (int, error)
}

// CountResolverFunc adapts a function to CountResolver.
type CountResolverFunc func(ctx context.Context, item Category) (int, error)

// ResolveCount calls f.
func (f CountResolverFunc) ResolveCount(ctx context.Context, item Category) (int, error) {
	return f(ctx, item)
}

// ItemCounts reads Category.Count. Negative counts are reported unavailable.
type ItemCounts struct{}

// ResolveCount implements CountResolver.
func (ItemCounts) ResolveCount(_ context.Context, item Category) (int, error) {
	if item.Count < 0 {
		return 0, ErrCountUnavailable
	}
	return item.Count, nil
}

// CountsByID serves counts from a map keyed by category ID.
type CountsByID map[string]int

// ResolveCount implements CountResolver.
func (m CountsByID) ResolveCount(_ context.Context, item Category) (int, error) {
	n, ok := m[item.ID]
	if !ok || n < 0 {
		return 0, ErrCountUnavailable
	}
	return n, nil
}

// Widget is the default Component.
type Widget struct {
	labels      Labels
	classPrefix string
	counts      CountResolver
	namer       func(instanceID string) FieldNamer
}

var _ Component = (*Widget)(nil)

// Option configures a Widget.
type Option func(*Widget)

// WithLabels sets translated labels; empty fields keep the English defaults.
func WithLabels(l Labels) Option {
	return func(w *Widget) {
		w.labels = l.Merge(DefaultLabels())
	}
}

// WithClassPrefix overrides the CSS class prefix.
func WithClassPrefix(prefix string) Option {
	return func(w *Widget) {
		w.classPrefix = prefix
	}
}

// WithCountResolver sets where item counts come from.
func WithCountResolver(r CountResolver) Option {
	return func(w *Widget) {
		if r != nil {
			w.counts = r
		}
	}
}

// WithFieldNamer sets how form field ids and names are built per instance.
func WithFieldNamer(fn func(instanceID string) FieldNamer) Option {
	return func(w *Widget) {
		if fn != nil {
			w.namer = fn
		}
	}
}

// New creates a Widget with English labels, the mccw- class prefix and
// counts read from the items themselves.
func New(opts ...Option) *Widget {
	w := &Widget{
		labels:      DefaultLabels(),
		classPrefix: DefaultClassPrefix,
		counts:      ItemCounts{},
		namer:       defaultNamer,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns the component id base.
func (w *Widget) ID() string { return ComponentID }

// Name returns the translated display name.
func (w *Widget) Name() string { return w.labels.WidgetName }

// Labels returns the labels in use.
func (w *Widget) Labels() Labels { return w.labels }

// ApplySettings implements Component; see the package-level ApplySettings.
func (w *Widget) ApplySettings(raw map[string]string, previous Settings) Settings {
	return ApplySettings(raw, previous)
}

// Sanitize is ApplySettings with the corrections reported.
func (w *Widget) Sanitize(raw map[string]string, previous Settings) (Settings, error) {
	return Sanitize(raw, previous)
}

var defaultWidget = New()

// Render renders items with default labels and wrapper.
func Render(s Settings, items []Category) string {
	return defaultWidget.Render(context.Background(), s, items)
}

// RenderForm renders the settings form for a not-yet-numbered instance.
func RenderForm(s Settings) string {
	return defaultWidget.RenderForm("", s)
}
