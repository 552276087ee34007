package widget

import (
	"html/template"
	"strconv"
	"strings"
)

// PlaceholderInstance numbers the form of an instance the host has not
// numbered yet.
const PlaceholderInstance = "__i__"

// FieldNamer builds the id and name attributes of a settings form field.
type FieldNamer interface {
	FieldID(field string) string
	FieldName(field string) string
}

// InstanceNamer namespaces fields as widget-{base}-{instance}-{field} (id)
// and widget-{base}[{instance}][{field}] (name).
type InstanceNamer struct {
	Base     string
	Instance string
}

// FieldID implements FieldNamer.
func (n InstanceNamer) FieldID(field string) string {
	return "widget-" + n.Base + "-" + n.instance() + "-" + field
}

// FieldName implements FieldNamer.
func (n InstanceNamer) FieldName(field string) string {
	return "widget-" + n.Base + "[" + n.instance() + "][" + field + "]"
}

func (n InstanceNamer) instance() string {
	if strings.TrimSpace(n.Instance) == "" {
		return PlaceholderInstance
	}
	return n.Instance
}

func defaultNamer(instanceID string) FieldNamer {
	return InstanceNamer{Base: ComponentID, Instance: instanceID}
}

// FormValues maps submitted form values back to raw setting keys, using the
// same namer that rendered the form. Keys that are not widget fields are
// dropped.
func FormValues(n FieldNamer, submitted map[string]string) map[string]string {
	raw := make(map[string]string, 3)
	for _, field := range []string{FieldTitle, FieldColumns, FieldShowCount} {
		if v, ok := submitted[n.FieldName(field)]; ok {
			raw[field] = v
		}
	}
	return raw
}

// Namer returns the field namer the widget uses for instanceID.
func (w *Widget) Namer(instanceID string) FieldNamer {
	return w.namer(instanceID)
}

var formTemplate = template.Must(template.New("form").Parse(
	`<p><label for="{{.Title.ID}}">{{.Title.Label}}{{.Sep}}</label> ` +
		`<input class="widefat" id="{{.Title.ID}}" name="{{.Title.Name}}" type="text" value="{{.Title.Value}}" placeholder="{{.Placeholder}}" /></p>` +
		`<p><label for="{{.Columns.ID}}">{{.Columns.Label}}{{.Sep}}</label> ` +
		`<input id="{{.Columns.ID}}" name="{{.Columns.Name}}" type="text" size="3" value="{{.Columns.Value}}" /></p>` +
		`<p><input id="{{.ShowCount.ID}}" name="{{.ShowCount.Name}}" type="checkbox" value="{{.ShowCount.Value}}"{{if .Checked}} checked="checked"{{end}} /> ` +
		`<label for="{{.ShowCount.ID}}">{{.ShowCount.Label}}</label></p>`))

type formField struct {
	ID    string
	Name  string
	Label string
	Value string
}

type formView struct {
	Title       formField
	Columns     formField
	ShowCount   formField
	Sep         string
	Placeholder string
	Checked     bool
}

// RenderForm renders the editable settings form for one instance,
// pre-populated from s. No validation happens here beyond showing a column
// count below the minimum as the minimum.
func (w *Widget) RenderForm(instanceID string, s Settings) string {
	n := w.namer(instanceID)
	field := func(key, label, value string) formField {
		return formField{ID: n.FieldID(key), Name: n.FieldName(key), Label: label, Value: value}
	}
	view := formView{
		Title:       field(FieldTitle, w.labels.TitleField, s.Title),
		Columns:     field(FieldColumns, w.labels.ColumnsField, strconv.Itoa(s.EffectiveColumns())),
		ShowCount:   field(FieldShowCount, w.labels.ShowCountField, CheckboxOn),
		Sep:         w.labels.FieldSeparator,
		Placeholder: w.labels.DefaultTitle,
		Checked:     s.ShowCount,
	}

	var sb strings.Builder
	if err := formTemplate.Execute(&sb, view); err != nil {
		return ""
	}
	return sb.String()
}
