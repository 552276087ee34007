package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

// Format selects the on-disk encoding of a File store.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// document is the on-disk layout shared by both encodings.
type document struct {
	Instances map[string]widget.Settings `yaml:"instances" toml:"instances"`
}

// File keeps every instance in one YAML or TOML file. Each operation
// re-reads the file so edits made outside the process are picked up;
// writes go through a temp file and rename.
type File struct {
	mu     sync.Mutex
	path   string
	format Format
}

// NewFile returns a store backed by path. The format follows the extension:
// .toml selects TOML, anything else YAML. A leading ~ expands to the home
// directory. The file is created on first write.
func NewFile(path string) (*File, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(resolved), ".toml") {
		format = FormatTOML
	}
	return &File{path: resolved, format: format}, nil
}

// Path returns the resolved file path.
func (f *File) Path() string { return f.path }

// Get implements Store.
func (f *File) Get(_ context.Context, instanceID string) (widget.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return widget.Settings{}, err
	}
	s, ok := doc.Instances[instanceID]
	if !ok {
		return widget.Settings{}, ErrNotFound
	}
	return s, nil
}

// Set implements Store.
func (f *File) Set(_ context.Context, instanceID string, s widget.Settings) error {
	if err := validateID(instanceID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	doc.Instances[instanceID] = s
	return f.save(doc)
}

// Delete implements Store.
func (f *File) Delete(_ context.Context, instanceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Instances[instanceID]; !ok {
		return nil
	}
	delete(doc.Instances, instanceID)
	return f.save(doc)
}

// List implements Store.
func (f *File) List(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(doc.Instances))
	for id := range doc.Instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *File) load() (document, error) {
	doc := document{Instances: map[string]widget.Settings{}}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read settings file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}

	switch f.format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return doc, fmt.Errorf("decode settings file %s: %w", f.path, err)
	}
	if doc.Instances == nil {
		doc.Instances = map[string]widget.Settings{}
	}
	return doc, nil
}

func (f *File) save(doc document) error {
	var (
		data []byte
		err  error
	)
	switch f.format {
	case FormatTOML:
		data, err = toml.Marshal(doc)
	default:
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".mccw-settings-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
