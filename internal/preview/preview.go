// Package preview lays a widget instance out as terminal columns.
package preview

import (
	"context"
	"os"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/mccw/pkg/columns"
	"github.com/oakwood-commons/mccw/pkg/widget"
)

const (
	// DefaultWidth is used when the terminal size cannot be read.
	DefaultWidth = 80
	// DefaultGap separates adjacent columns.
	DefaultGap = 2
	// MinColumnWidth keeps very narrow terminals readable.
	MinColumnWidth = 8

	bullet   = "• "
	ellipsis = "…"
)

var (
	titleColor  = lipgloss.Color("12")
	bulletColor = lipgloss.Color("14")
	countColor  = lipgloss.Color("240")
)

// Options controls the layout.
type Options struct {
	Width   int
	Gap     int
	NoColor bool
	Counts  widget.CountResolver
}

type styles struct {
	title  lipgloss.Style
	bullet lipgloss.Style
	count  lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{title: plain, bullet: plain, count: plain}
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(titleColor),
		bullet: lipgloss.NewStyle().Foreground(bulletColor),
		count:  lipgloss.NewStyle().Foreground(countColor),
	}
}

// TerminalWidth returns the width of stdout, or DefaultWidth.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Render returns the title line followed by the items split into the
// instance's columns, side by side. Labels wider than their column are cut
// with an ellipsis.
func Render(ctx context.Context, title string, s widget.Settings, items []widget.Category, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Gap < 0 {
		opts.Gap = 0
	} else if opts.Gap == 0 {
		opts.Gap = DefaultGap
	}
	if opts.Counts == nil {
		opts.Counts = widget.ItemCounts{}
	}
	st := newStyles(opts.NoColor)

	groups := columns.Distribute(items, s.EffectiveColumns())
	colWidth := (opts.Width - opts.Gap*(len(groups)-1)) / len(groups)
	if colWidth < MinColumnWidth {
		colWidth = MinColumnWidth
	}

	blocks := make([]string, 0, len(groups))
	for _, g := range groups {
		lines := make([]string, 0, len(g.Items))
		for _, item := range g.Items {
			lines = append(lines, renderItem(ctx, st, item, s.ShowCount, opts.Counts, colWidth))
		}
		if !g.Role.IsLast() {
			gap := strings.Repeat(" ", opts.Gap)
			for i, line := range lines {
				lines[i] = line + strings.Repeat(" ", max(0, colWidth-lipgloss.Width(line))) + gap
			}
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	heading := st.title.Render(runewidth.Truncate(title, opts.Width, ellipsis))
	body := lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
	if strings.TrimSpace(body) == "" {
		return heading + "\n"
	}
	return heading + "\n" + body + "\n"
}

func renderItem(ctx context.Context, st styles, item widget.Category, showCount bool, counts widget.CountResolver, width int) string {
	suffix := ""
	if showCount {
		if n, err := counts.ResolveCount(ctx, item); err == nil && n >= 0 {
			suffix = " (" + strconv.Itoa(n) + ")"
		}
	}
	avail := width - runewidth.StringWidth(bullet)
	name := item.Name
	if runewidth.StringWidth(name+suffix) > avail {
		// keep the count visible when there is room for it
		if room := avail - runewidth.StringWidth(suffix); room > runewidth.StringWidth(ellipsis) {
			name = runewidth.Truncate(name, room, ellipsis)
		} else {
			name = runewidth.Truncate(name+suffix, avail, ellipsis)
			suffix = ""
		}
	}
	return st.bullet.Render(bullet) + name + st.count.Render(suffix)
}
