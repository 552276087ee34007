// Package loader reads category lists from files or streams, detecting the
// format from the content: JSON, newline-delimited JSON, YAML (single or
// multi-document), TOML, or a Markdown list of links.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

// ErrEmptyInput is returned when there is nothing to parse.
var ErrEmptyInput = errors.New("empty input")

// Format names a detected input format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatNDJSON   Format = "ndjson"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatMarkdown Format = "markdown"
)

var (
	tomlSectionPattern  = regexp.MustCompile(`^\s*\[{1,2}[a-zA-Z_][a-zA-Z0-9_.-]*\]{1,2}\s*$`)
	tomlKeyValuePattern = regexp.MustCompile(`^\s*[a-zA-Z_][a-zA-Z0-9_.-]*\s*=\s*.+$`)
	markdownLinkItem    = regexp.MustCompile(`^\s*[-*+]\s+\[[^\]]*\]\([^)]*\)`)
)

// Detect guesses the format of input. Order matters: a JSON array with one
// object per line looks like NDJSON, and Markdown link lists and TOML
// headers would otherwise parse as YAML or JSON arrays.
func Detect(input string) Format {
	trimmed := strings.TrimSpace(input)
	lines := strings.Split(trimmed, "\n")

	switch {
	case json.Valid([]byte(trimmed)):
		return FormatJSON
	case isLikelyMarkdown(lines):
		return FormatMarkdown
	case strings.HasPrefix(trimmed, "---") || strings.Contains(trimmed, "\n---"):
		return FormatYAML
	case isLikelyNDJSON(lines):
		return FormatNDJSON
	case isLikelyTOML(lines):
		return FormatTOML
	case strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "["):
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Load parses input and returns its categories in source order.
func Load(input string) ([]widget.Category, error) {
	return LoadWithLogger(input, logr.Discard())
}

// LoadWithLogger is like Load but records the detected format.
func LoadWithLogger(input string, lgr logr.Logger) ([]widget.Category, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	format := Detect(input)
	lgr.V(1).Info("detected category input format", "format", format)

	if format == FormatMarkdown {
		return loadMarkdown([]byte(input))
	}
	docs, err := decode(input, format)
	if err != nil {
		return nil, err
	}
	return categoriesFromDocs(docs)
}

// LoadReader reads r fully and parses it.
func LoadReader(r io.Reader, lgr logr.Logger) ([]widget.Category, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return LoadWithLogger(string(data), lgr)
}

// LoadFile reads path and parses it.
func LoadFile(path string, lgr logr.Logger) ([]widget.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cats, err := LoadWithLogger(string(data), lgr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cats, nil
}

func decode(input string, format Format) ([]any, error) {
	switch format {
	case FormatJSON:
		var data any
		if err := json.Unmarshal([]byte(input), &data); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return []any{data}, nil
	case FormatNDJSON:
		return decodeNDJSON(input)
	case FormatTOML:
		var data map[string]any
		if err := toml.Unmarshal([]byte(input), &data); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return []any{data}, nil
	case FormatYAML, FormatMarkdown:
		return decodeYAML(input)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func decodeYAML(input string) ([]any, error) {
	var docs []any
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, ErrEmptyInput
	}
	return docs, nil
}

func decodeNDJSON(input string) ([]any, error) {
	var docs []any
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", i+1, err)
		}
		docs = append(docs, obj)
	}
	return docs, nil
}

// isLikelyNDJSON requires more than one non-empty line and a majority of
// lines that open a JSON object.
func isLikelyNDJSON(lines []string) bool {
	objects, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") {
			objects++
		}
	}
	return nonEmpty > 1 && objects > nonEmpty/2
}

// isLikelyTOML looks for [section] headers or a majority of key = value lines.
func isLikelyTOML(lines []string) bool {
	keyValues, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSectionPattern.MatchString(line) {
			return true
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValues++
		}
	}
	return nonEmpty > 0 && keyValues > nonEmpty/2
}

// isLikelyMarkdown is true when the first list line is a bullet holding a link.
func isLikelyMarkdown(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "+") {
			return markdownLinkItem.MatchString(line)
		}
	}
	return false
}
