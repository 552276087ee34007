// Package editor is an interactive terminal form for one widget instance's
// settings, with a live column preview.
package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/mccw/internal/preview"
	"github.com/oakwood-commons/mccw/pkg/widget"
)

// Updater persists submitted form values and returns the sanitized result.
type Updater interface {
	Update(ctx context.Context, instanceID string, raw map[string]string) (widget.Settings, error)
}

type field int

const (
	fieldTitle field = iota
	fieldColumns
	fieldShowCount
	fieldCount
)

var (
	focusColor = lipgloss.Color("14")
	errorColor = lipgloss.Color("9")
	helpColor  = lipgloss.Color("240")
)

type savedMsg struct {
	settings widget.Settings
	err      error
}

// Model is the bubbletea model of the editor.
type Model struct {
	ctx        context.Context
	updater    Updater
	instanceID string
	labels     widget.Labels
	items      []widget.Category

	settings widget.Settings
	title    textinput.Model
	focus    field

	width   int
	noColor bool
	status  string
	err     error
	dirty   bool
	saving  bool
	done    bool
}

// New returns an editor for instanceID starting from current.
func New(ctx context.Context, u Updater, instanceID string, current widget.Settings, labels widget.Labels, items []widget.Category, noColor bool) *Model {
	ti := textinput.New()
	ti.Placeholder = labels.DefaultTitle
	ti.CharLimit = 200
	ti.SetWidth(40)
	ti.Prompt = ""
	ti.SetValue(current.Title)
	ti.Focus()

	current.Columns = current.EffectiveColumns()
	return &Model{
		ctx:        ctx,
		updater:    u,
		instanceID: instanceID,
		labels:     labels,
		items:      items,
		settings:   current,
		title:      ti,
		width:      preview.DefaultWidth,
		noColor:    noColor,
	}
}

// Settings returns the settings as currently edited.
func (m *Model) Settings() widget.Settings {
	s := m.settings
	s.Title = m.title.Value()
	return s
}

// Dirty reports unsaved changes.
func (m *Model) Dirty() bool { return m.dirty }

// Err returns the last save error.
func (m *Model) Err() error { return m.err }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return textinput.Blink }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.title.SetWidth(max(10, msg.Width/2))
		return m, nil
	case savedMsg:
		m.saving = false
		m.err = msg.err
		if msg.err != nil {
			m.status = "save failed"
			return m, nil
		}
		m.settings = msg.settings
		m.title.SetValue(msg.settings.Title)
		m.dirty = false
		m.status = "saved"
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.done = true
		return m, tea.Quit
	case "ctrl+s":
		return m, m.save()
	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	}

	if m.focus == fieldTitle {
		if msg.String() == "enter" {
			return m, m.setFocus(fieldColumns)
		}
		before := m.title.Value()
		var cmd tea.Cmd
		m.title, cmd = m.title.Update(msg)
		if m.title.Value() != before {
			m.touch()
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.done = true
		return m, tea.Quit
	case "+", "=", "right", "l":
		if m.focus == fieldColumns {
			m.settings.Columns++
			m.touch()
		}
	case "-", "left", "h":
		if m.focus == fieldColumns && m.settings.Columns > widget.MinColumns {
			m.settings.Columns--
			m.touch()
		}
	case "space", "enter", "x":
		if m.focus == fieldShowCount {
			m.settings.ShowCount = !m.settings.ShowCount
			m.touch()
		}
	case "c":
		m.settings.ShowCount = !m.settings.ShowCount
		m.touch()
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && m.focus == fieldColumns && n >= widget.MinColumns {
			m.settings.Columns = n
			m.touch()
		}
	}
	return m, nil
}

func (m *Model) touch() {
	m.dirty = true
	m.status = ""
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	if f == fieldTitle {
		return m.title.Focus()
	}
	m.title.Blur()
	return nil
}

// save submits the form the same way the HTML form does, so the values
// pass through the widget's sanitizing.
func (m *Model) save() tea.Cmd {
	if m.saving {
		return nil
	}
	m.saving = true
	s := m.Settings()
	raw := map[string]string{
		widget.FieldTitle:   s.Title,
		widget.FieldColumns: strconv.Itoa(s.Columns),
	}
	if s.ShowCount {
		raw[widget.FieldShowCount] = widget.CheckboxOn
	}
	ctx, u, id := m.ctx, m.updater, m.instanceID
	return func() tea.Msg {
		next, err := u.Update(ctx, id, raw)
		return savedMsg{settings: next, err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	return tea.NewView(m.render())
}

func (m *Model) style(c lipgloss.Style) lipgloss.Style {
	if m.noColor {
		return lipgloss.NewStyle()
	}
	return c
}

func (m *Model) render() string {
	focused := m.style(lipgloss.NewStyle().Bold(true).Foreground(focusColor))
	plain := lipgloss.NewStyle()
	label := func(f field, text string) string {
		marker := "  "
		st := plain
		if m.focus == f {
			marker = "> "
			st = focused
		}
		return marker + st.Render(text+m.labels.FieldSeparator)
	}

	check := "[ ]"
	if m.settings.ShowCount {
		check = "[x]"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n\n", m.style(lipgloss.NewStyle().Bold(true)).Render(m.labels.WidgetName), m.instanceID)
	fmt.Fprintf(&sb, "%s %s\n", label(fieldTitle, m.labels.TitleField), m.title.View())
	fmt.Fprintf(&sb, "%s %d\n", label(fieldColumns, m.labels.ColumnsField), m.settings.Columns)
	fmt.Fprintf(&sb, "%s %s\n\n", label(fieldShowCount, m.labels.ShowCountField), check)

	title := strings.TrimSpace(m.title.Value())
	if title == "" {
		title = m.labels.DefaultTitle
	}
	sb.WriteString(preview.Render(m.ctx, title, m.Settings(), m.items, preview.Options{Width: m.width, NoColor: m.noColor}))
	sb.WriteString("\n")

	switch {
	case m.err != nil:
		sb.WriteString(m.style(lipgloss.NewStyle().Foreground(errorColor)).Render("error: "+m.err.Error()) + "\n")
	case m.status != "":
		sb.WriteString(m.status + "\n")
	case m.dirty:
		sb.WriteString("modified\n")
	}
	sb.WriteString(m.style(lipgloss.NewStyle().Foreground(helpColor)).Render("tab: next field  +/-: columns  space: toggle  ctrl+s: save  esc: quit"))
	return sb.String()
}

// Run starts the editor and returns the final model.
func Run(m *Model, opts ...tea.ProgramOption) (*Model, error) {
	final, err := tea.NewProgram(m, opts...).Run()
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm, err
	}
	return m, err
}
