// Package core wires a widget component to its settings store and item
// source and drives it the way a page host would.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/mccw/internal/filter"
	"github.com/oakwood-commons/mccw/pkg/logger"
	"github.com/oakwood-commons/mccw/pkg/store"
	"github.com/oakwood-commons/mccw/pkg/widget"
)

// Source supplies the categories to display.
type Source interface {
	Categories(ctx context.Context) ([]widget.Category, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]widget.Category, error)

// Categories calls f.
func (f SourceFunc) Categories(ctx context.Context) ([]widget.Category, error) { return f(ctx) }

// StaticSource always returns the same categories.
type StaticSource []widget.Category

// Categories implements Source.
func (s StaticSource) Categories(context.Context) ([]widget.Category, error) {
	return append([]widget.Category(nil), s...), nil
}

// Filter narrows the fetched categories before rendering.
type Filter interface {
	Apply(ctx context.Context, cats []widget.Category) ([]widget.Category, error)
}

// Sanitizer is implemented by components that report settings corrections.
type Sanitizer interface {
	Sanitize(raw map[string]string, previous widget.Settings) (widget.Settings, error)
}

// Engine renders widget instances. Settings are read from Store on every
// call; items come from Source.
type Engine struct {
	Store  store.Store
	Source Source
	Widget widget.Component
	Filter Filter
	Logger logr.Logger
	// Defaults are the settings of an instance that was never saved.
	Defaults widget.Settings

	filterExpr string
}

// Option configures the Engine.
type Option func(*Engine)

// WithStore sets the settings store.
func WithStore(s store.Store) Option {
	return func(e *Engine) {
		e.Store = s
	}
}

// WithSource sets the item source.
func WithSource(s Source) Option {
	return func(e *Engine) {
		e.Source = s
	}
}

// WithWidget sets the component.
func WithWidget(w widget.Component) Option {
	return func(e *Engine) {
		e.Widget = w
	}
}

// WithFilter sets the item filter.
func WithFilter(f Filter) Option {
	return func(e *Engine) {
		e.Filter = f
	}
}

// WithFilterExpr compiles a CEL predicate over `item` as the item filter.
// A blank expression leaves the filter unset.
func WithFilterExpr(expr string) Option {
	return func(e *Engine) {
		e.filterExpr = expr
	}
}

// WithDefaults sets the settings used for never-saved instances.
func WithDefaults(s widget.Settings) Option {
	return func(e *Engine) {
		e.Defaults = s
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(lgr logr.Logger) Option {
	return func(e *Engine) {
		e.Logger = lgr
	}
}

// New creates an Engine with an in-memory store, the default widget and
// no items.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{Defaults: widget.DefaultSettings()}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.Store == nil {
		engine.Store = store.NewMemory()
	}
	if engine.Widget == nil {
		engine.Widget = widget.New()
	}
	engine.Defaults.Columns = engine.Defaults.EffectiveColumns()
	if engine.Source == nil {
		engine.Source = StaticSource(nil)
	}
	if strings.TrimSpace(engine.filterExpr) != "" {
		f, err := filter.New(engine.filterExpr)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		engine.Filter = f
	}
	return engine, nil
}

func (e *Engine) log(ctx context.Context, instanceID string) *logr.Logger {
	lgr := logger.FromContext(ctx)
	if e.Logger.GetSink() != nil {
		lgr = &e.Logger
	}
	return logger.ForInstance(lgr, e.Widget.ID(), instanceID)
}

// Settings returns the stored settings of an instance, or the defaults
// when none are stored or the store cannot be read.
func (e *Engine) Settings(ctx context.Context, instanceID string) widget.Settings {
	s, err := e.Store.Get(ctx, instanceID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return e.Defaults
	case err != nil:
		e.log(ctx, instanceID).Error(err, "reading settings, using defaults")
		return e.Defaults
	}
	return s
}

// Items fetches and filters the categories. A failing source yields no
// items; a failing filter leaves the items unfiltered.
func (e *Engine) Items(ctx context.Context) []widget.Category {
	lgr := logger.FromContext(ctx)
	if e.Logger.GetSink() != nil {
		lgr = &e.Logger
	}
	items, err := e.Source.Categories(ctx)
	if err != nil {
		lgr.Error(err, "fetching categories, rendering none")
		return nil
	}
	if e.Filter == nil {
		return items
	}
	filtered, err := e.Filter.Apply(ctx, items)
	if err != nil {
		lgr.Error(err, "filtering categories, rendering all")
		return items
	}
	lgr.V(1).Info("filtered categories", logger.ItemsKey, len(filtered))
	return filtered
}

// Display writes the instance's widget wrapped in args to w.
func (e *Engine) Display(ctx context.Context, w io.Writer, instanceID string, args widget.Args) error {
	s := e.Settings(ctx, instanceID)
	items := e.Items(ctx)
	lgr := e.log(ctx, instanceID)
	lgr.V(1).Info("displaying widget", logger.ColumnsKey, s.EffectiveColumns(), logger.ItemsKey, len(items))
	return e.Widget.Display(logger.WithLogger(ctx, lgr), w, args, s, items)
}

// Render returns the instance's markup inside the default wrapper.
func (e *Engine) Render(ctx context.Context, instanceID string) (string, error) {
	var sb strings.Builder
	if err := e.Display(ctx, &sb, instanceID, widget.DefaultArgs()); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Form returns the settings form of an instance.
func (e *Engine) Form(ctx context.Context, instanceID string) string {
	return e.Widget.RenderForm(instanceID, e.Settings(ctx, instanceID))
}

// Update merges raw form values over the stored settings and persists the
// result. Corrections are logged, not returned; only a failed write fails.
func (e *Engine) Update(ctx context.Context, instanceID string, raw map[string]string) (widget.Settings, error) {
	prev := e.Settings(ctx, instanceID)
	lgr := e.log(ctx, instanceID)

	var next widget.Settings
	if sz, ok := e.Widget.(Sanitizer); ok {
		var err error
		next, err = sz.Sanitize(raw, prev)
		if err != nil {
			lgr.V(1).Info("corrected submitted settings", "reason", err.Error())
		}
	} else {
		next = e.Widget.ApplySettings(raw, prev)
	}

	if err := e.Store.Set(ctx, instanceID, next); err != nil {
		return prev, fmt.Errorf("saving settings of %q: %w", instanceID, err)
	}
	lgr.V(1).Info("saved settings", logger.ColumnsKey, next.Columns)
	return next, nil
}

// Save persists s as-is after clamping the column count.
func (e *Engine) Save(ctx context.Context, instanceID string, s widget.Settings) error {
	s.Columns = s.EffectiveColumns()
	if err := e.Store.Set(ctx, instanceID, s); err != nil {
		return fmt.Errorf("saving settings of %q: %w", instanceID, err)
	}
	return nil
}

// Delete removes an instance's settings. Deleting an unknown instance is
// not an error.
func (e *Engine) Delete(ctx context.Context, instanceID string) error {
	err := e.Store.Delete(ctx, instanceID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("deleting settings of %q: %w", instanceID, err)
	}
	return nil
}

// Instances lists the ids of instances with stored settings.
func (e *Engine) Instances(ctx context.Context) ([]string, error) {
	return e.Store.List(ctx)
}
