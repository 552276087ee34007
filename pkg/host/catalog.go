package host

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

//go:embed languages/*.yaml
var bundled embed.FS

type catalogFile struct {
	Domain string        `yaml:"domain"`
	Locale string        `yaml:"locale"`
	Labels widget.Labels `yaml:"labels"`
}

// Catalog maps locales to translated labels for the widget text domain.
type Catalog struct {
	tags    []language.Tag
	labels  map[language.Tag]widget.Labels
	matcher language.Matcher
}

// NewCatalog returns the catalogs shipped with the binary, overlaid with
// any "<locale>.yaml" files found in dir. An empty dir skips the overlay.
func NewCatalog(dir string) (*Catalog, error) {
	c := &Catalog{labels: make(map[language.Tag]widget.Labels)}
	if err := c.loadFS(bundled, "languages"); err != nil {
		return nil, err
	}
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("catalog dir: %w", err)
		}
		if err := c.loadFS(os.DirFS(filepath.Clean(dir)), "."); err != nil {
			return nil, err
		}
	}
	c.build()
	return c, nil
}

func (c *Catalog) loadFS(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("read catalogs: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(root, e.Name()))
		if err != nil {
			return fmt.Errorf("read catalog %s: %w", e.Name(), err)
		}
		if err := c.add(e.Name(), data); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) add(name string, data []byte) error {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse catalog %s: %w", name, err)
	}
	if f.Domain != "" && f.Domain != widget.TextDomain {
		// another plugin's catalog
		return nil
	}
	locale := f.Locale
	if locale == "" {
		locale = strings.TrimSuffix(name, path.Ext(name))
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("catalog %s: %w", name, err)
	}
	prev, ok := c.labels[tag]
	if ok {
		f.Labels = f.Labels.Merge(prev)
	}
	c.labels[tag] = f.Labels.Merge(widget.DefaultLabels())
	return nil
}

func (c *Catalog) build() {
	c.tags = c.tags[:0]
	if _, ok := c.labels[language.English]; !ok {
		c.labels[language.English] = widget.DefaultLabels()
	}
	// English first so it is the matcher's fallback.
	c.tags = append(c.tags, language.English)
	rest := make([]language.Tag, 0, len(c.labels))
	for tag := range c.labels {
		if tag != language.English {
			rest = append(rest, tag)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].String() < rest[j].String() })
	c.tags = append(c.tags, rest...)
	c.matcher = language.NewMatcher(c.tags)
}

// Locales returns the available locales, English first.
func (c *Catalog) Locales() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

// Match returns the best available tag for the requested locales, which
// may be BCP 47 tags or Accept-Language values.
func (c *Catalog) Match(requested ...string) language.Tag {
	var want []language.Tag
	for _, r := range requested {
		tags, _, err := language.ParseAcceptLanguage(r)
		if err != nil {
			continue
		}
		want = append(want, tags...)
	}
	_, idx, _ := c.matcher.Match(want...)
	return c.tags[idx]
}

// Labels returns the labels for the best match of requested.
func (c *Catalog) Labels(requested ...string) widget.Labels {
	return c.labels[c.Match(requested...)]
}
