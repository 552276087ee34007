// Package config loads the application config: an embedded default YAML
// with the user's file merged on top.
package config

import (
	"github.com/oakwood-commons/mccw/pkg/widget"
)

// Config is the merged application config.
type Config struct {
	App         AppConfig       `yaml:"app"`
	Locale      string          `yaml:"locale"`
	Catalogs    string          `yaml:"catalogs"`
	ClassPrefix string          `yaml:"class_prefix"`
	Filter      string          `yaml:"filter"`
	Defaults    widget.Settings `yaml:"defaults"`
	Store       StoreConfig     `yaml:"store"`
	Items       ItemsConfig     `yaml:"items"`
	Server      ServerConfig    `yaml:"server"`
}

// AppConfig holds display metadata. Values may use {{ .Version }},
// {{ .Commit }} and {{ .GoVersion }}.
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// StoreConfig selects where instance settings live. Path selects a YAML or
// TOML file by extension, DSN a Postgres table. With neither, settings are
// kept in memory for the run.
type StoreConfig struct {
	Path  string `yaml:"path"`
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// ItemsConfig points at the category source file.
type ItemsConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}
