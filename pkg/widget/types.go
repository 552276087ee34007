package widget

import "html/template"

// TextDomain is the catalog domain all user-facing labels are looked up in.
const TextDomain = "multicolumn-category-widget"

// Default values for a freshly placed widget instance.
const (
	DefaultColumns = 2
	MinColumns     = 1
	// CheckboxOn is the value a checked show-count box submits.
	CheckboxOn = "1"
)

// Settings field keys, shared by forms, raw updates and persisted records.
const (
	FieldTitle     = "title"
	FieldColumns   = "columns"
	FieldShowCount = "showcount"
)

// Category is one entry handed to the widget by the item source. Parent is
// empty for top-level categories.
type Category struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	Name        string `json:"name" yaml:"name" toml:"name"`
	Link        string `json:"link" yaml:"link" toml:"link"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Count       int    `json:"count" yaml:"count" toml:"count"`
	Parent      string `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
}

// Settings are the persisted per-instance display options.
type Settings struct {
	Title     string `json:"title" yaml:"title" toml:"title"`
	Columns   int    `json:"columns" yaml:"columns" toml:"columns"`
	ShowCount bool   `json:"showcount" yaml:"showcount" toml:"showcount"`
}

// DefaultSettings returns the settings of a newly placed instance.
func DefaultSettings() Settings {
	return Settings{Columns: DefaultColumns}
}

// EffectiveColumns returns the column count clamped to MinColumns.
func (s Settings) EffectiveColumns() int {
	if s.Columns < MinColumns {
		return MinColumns
	}
	return s.Columns
}

// Labels holds the already-translated strings the widget shows.
type Labels struct {
	WidgetName     string `yaml:"widget_name"`
	DefaultTitle   string `yaml:"default_title"`
	TitleField     string `yaml:"title_field"`
	ColumnsField   string `yaml:"columns_field"`
	ShowCountField string `yaml:"showcount_field"`
	FieldSeparator string `yaml:"field_separator"`
}

// DefaultLabels returns the untranslated English labels.
func DefaultLabels() Labels {
	return Labels{
		WidgetName:     "Multicolumn Category Widget",
		DefaultTitle:   "Categories",
		TitleField:     "Title",
		ColumnsField:   "Number of columns",
		ShowCountField: "Show post counts",
		FieldSeparator: ":",
	}
}

// Merge fills empty fields of l from fallback.
func (l Labels) Merge(fallback Labels) Labels {
	pick := func(v, f string) string {
		if v != "" {
			return v
		}
		return f
	}
	return Labels{
		WidgetName:     pick(l.WidgetName, fallback.WidgetName),
		DefaultTitle:   pick(l.DefaultTitle, fallback.DefaultTitle),
		TitleField:     pick(l.TitleField, fallback.TitleField),
		ColumnsField:   pick(l.ColumnsField, fallback.ColumnsField),
		ShowCountField: pick(l.ShowCountField, fallback.ShowCountField),
		FieldSeparator: pick(l.FieldSeparator, fallback.FieldSeparator),
	}
}

// Args carries the wrapper fragments the host splices widget output into.
// The fragments are trusted host markup and are written verbatim.
type Args struct {
	BeforeWidget template.HTML
	AfterWidget  template.HTML
	BeforeTitle  template.HTML
	AfterTitle   template.HTML
}

// DefaultArgs returns the wrapper used when the host supplies none.
func DefaultArgs() Args {
	return Args{
		BeforeWidget: `<section class="widget widget_mccw">`,
		AfterWidget:  `</section>`,
		BeforeTitle:  `<h2 class="widget-title">`,
		AfterTitle:   `</h2>`,
	}
}
