package config

import (
	_ "embed"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultConfigYAML))
	copy(out, defaultConfigYAML)
	return out
}
