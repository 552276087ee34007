// Package host is the adapter surface between a page host and widget
// components: explicit registration, front-end assets and translations.
package host

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

var (
	// ErrDuplicate is returned when a component or asset handle is registered twice.
	ErrDuplicate = errors.New("already registered")
	// ErrInvalid is returned for components or assets without an identifier.
	ErrInvalid = errors.New("invalid registration")
)

// Registry holds the components and assets a host has been told about.
// Nothing is registered implicitly.
type Registry struct {
	mu         sync.RWMutex
	components map[string]widget.Component
	order      []string
	assets     []Asset
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]widget.Component)}
}

// Register adds c under its ID.
func (r *Registry) Register(c widget.Component) error {
	if c == nil || strings.TrimSpace(c.ID()) == "" {
		return fmt.Errorf("component: %w", ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := c.ID()
	if _, ok := r.components[id]; ok {
		return fmt.Errorf("component %q: %w", id, ErrDuplicate)
	}
	r.components[id] = c
	r.order = append(r.order, id)
	return nil
}

// Lookup returns the component registered under id.
func (r *Registry) Lookup(id string) (widget.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[id]
	return c, ok
}

// Components returns the registered components in registration order.
func (r *Registry) Components() []widget.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]widget.Component, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.components[id])
	}
	return out
}

// RegisterAsset enqueues a front-end asset. Handles are unique.
func (r *Registry) RegisterAsset(a Asset) error {
	if strings.TrimSpace(a.Handle) == "" || strings.TrimSpace(a.Path) == "" {
		return fmt.Errorf("asset: %w", ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.assets {
		if existing.Handle == a.Handle {
			return fmt.Errorf("asset %q: %w", a.Handle, ErrDuplicate)
		}
	}
	r.assets = append(r.assets, a)
	return nil
}

// Assets returns the registered assets in registration order.
func (r *Registry) Assets() []Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Asset(nil), r.assets...)
}

// Asset returns the asset served at path.
func (r *Registry) Asset(path string) (Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path = strings.TrimPrefix(path, "/")
	for _, a := range r.assets {
		if a.Path == path {
			return a, true
		}
	}
	return Asset{}, false
}

// Setup registers w and its stylesheet on r.
func Setup(r *Registry, w widget.Component) error {
	if err := r.Register(w); err != nil {
		return err
	}
	return r.RegisterAsset(Stylesheet())
}
