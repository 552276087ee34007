package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/mccw/pkg/settings"
	"github.com/oakwood-commons/mccw/pkg/widget"
)

// FileName is the config file looked up in the user config directory.
const FileName = "config.yaml"

// Path returns the config file to read. An explicit path wins; otherwise
// $XDG_CONFIG_HOME/mccw/config.yaml, then ~/.config/mccw/config.yaml.
// found is false when the default location does not exist.
func Path(explicit string) (path string, found bool) {
	if explicit != "" {
		return explicit, true
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		dir = filepath.Join(home, ".config")
	}
	path = filepath.Join(dir, settings.CliBinaryName, FileName)
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

// Default returns the embedded config.
func Default() (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return expand(cfg)
}

// Load returns the embedded config with the file at path merged on top.
// Keys missing from the file keep their default. An empty path loads the
// defaults only.
func Load(path string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := Merge(&cfg, data); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	cfg, err := expand(cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Merge decodes data over cfg.
func Merge(cfg *Config, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate reports settings that cannot be used together.
func (c Config) Validate() error {
	var errs []error
	if c.Store.Path != "" && c.Store.DSN != "" {
		errs = append(errs, fmt.Errorf("store: path and dsn are mutually exclusive"))
	}
	if c.Defaults.Columns < widget.MinColumns {
		errs = append(errs, fmt.Errorf("defaults.columns must be at least %d, got %d", widget.MinColumns, c.Defaults.Columns))
	}
	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			errs = append(errs, fmt.Errorf("locale %q: %w", c.Locale, err))
		}
	}
	return errors.Join(errs...)
}

// LocaleTag returns the configured locale, or English when unset or invalid.
func (c Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

type buildData struct {
	Version   string
	Commit    string
	GoVersion string
}

func expand(cfg Config) (Config, error) {
	data := buildData{
		Version:   settings.VersionInformation.BuildVersion,
		Commit:    settings.VersionInformation.Commit,
		GoVersion: runtime.Version(),
	}
	for _, field := range []*string{&cfg.App.Name, &cfg.App.Version, &cfg.App.Description} {
		out, err := render(*field, data)
		if err != nil {
			return cfg, err
		}
		*field = out
	}
	return cfg, nil
}

func render(text string, data buildData) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("config").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("config template %q: %w", text, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("config template %q: %w", text, err)
	}
	return buf.String(), nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
