// Package store persists widget settings per widget instance.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

// ErrNotFound is returned by Get when an instance has no stored settings.
var ErrNotFound = errors.New("widget instance not found")

// Store reads and writes the settings of widget instances. Implementations
// are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, instanceID string) (widget.Settings, error)
	Set(ctx context.Context, instanceID string, s widget.Settings) error
	Delete(ctx context.Context, instanceID string) error
	List(ctx context.Context) ([]string, error)
}

// GetOrDefault returns the stored settings, or widget.DefaultSettings when
// the instance has never been saved.
func GetOrDefault(ctx context.Context, st Store, instanceID string) (widget.Settings, error) {
	s, err := st.Get(ctx, instanceID)
	if errors.Is(err, ErrNotFound) {
		return widget.DefaultSettings(), nil
	}
	if err != nil {
		return widget.DefaultSettings(), err
	}
	return s, nil
}

func validateID(instanceID string) error {
	if strings.TrimSpace(instanceID) == "" {
		return fmt.Errorf("instance id is empty")
	}
	return nil
}
