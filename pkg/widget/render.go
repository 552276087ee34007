package widget

import (
	"context"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/oakwood-commons/mccw/pkg/columns"
	"github.com/oakwood-commons/mccw/pkg/logger"
)

var (
	titleTemplate = template.Must(template.New("title").Parse(
		`{{.Before}}{{.Title}}{{.After}}`))

	columnsTemplate = template.Must(template.New("columns").Parse(
		`{{range .}}<ul class="{{.Class}}">` +
			`{{range .Items}}<li class="cat-item cat-item-{{.ID}}">` +
			`<a href="{{.Link}}" title="{{.Description}}">{{.Name}}</a>` +
			`{{if .HasCount}} <span class="postcount">({{.Count}})</span>{{end}}` +
			`</li>{{end}}</ul>{{end}}`))
)

type titleView struct {
	Before template.HTML
	Title  string
	After  template.HTML
}

type columnView struct {
	Class string
	Items []itemView
}

type itemView struct {
	Category
	HasCount bool
}

// Render returns the title block followed by one list per column, using the
// default title wrapper. It never fails; degraded data is left out.
func (w *Widget) Render(ctx context.Context, s Settings, items []Category) string {
	var sb strings.Builder
	w.renderInto(ctx, &sb, DefaultArgs(), s, items)
	return sb.String()
}

// Display writes the complete widget to out: args.BeforeWidget, the title
// inside args.BeforeTitle/AfterTitle, the column lists and args.AfterWidget.
// Only write errors are returned.
func (w *Widget) Display(ctx context.Context, out io.Writer, args Args, s Settings, items []Category) error {
	var sb strings.Builder
	sb.WriteString(string(args.BeforeWidget))
	w.renderInto(ctx, &sb, args, s, items)
	sb.WriteString(string(args.AfterWidget))
	_, err := io.WriteString(out, sb.String())
	return err
}

// Title returns the title to show for s.
func (w *Widget) Title(s Settings) string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return w.labels.DefaultTitle
}

func (w *Widget) renderInto(ctx context.Context, sb *strings.Builder, args Args, s Settings, items []Category) {
	lgr := logger.FromContext(ctx)

	if err := titleTemplate.Execute(sb, titleView{
		Before: args.BeforeTitle,
		Title:  w.Title(s),
		After:  args.AfterTitle,
	}); err != nil {
		lgr.Error(err, "render title")
	}

	groups := columns.Distribute(items, s.EffectiveColumns())
	views := make([]columnView, 0, len(groups))
	for _, g := range groups {
		views = append(views, columnView{
			Class: w.groupClass(g.Role, g.Index),
			Items: w.itemViews(ctx, s, g.Items),
		})
	}
	if err := columnsTemplate.Execute(sb, views); err != nil {
		lgr.Error(err, "render columns")
	}

	lgr.V(1).Info("rendered widget",
		logger.ItemsKey, len(items),
		logger.ColumnsKey, len(groups),
		"requested", s.EffectiveColumns())
}

func (w *Widget) groupClass(role columns.Role, index int) string {
	return role.Classes(w.classPrefix) + " " + w.classPrefix + "col-" + strconv.Itoa(index)
}

func (w *Widget) itemViews(ctx context.Context, s Settings, items []Category) []itemView {
	out := make([]itemView, len(items))
	for i, item := range items {
		out[i] = itemView{Category: item}
		if !s.ShowCount {
			continue
		}
		n, err := w.counts.ResolveCount(ctx, item)
		if err != nil || n < 0 {
			logger.FromContext(ctx).V(1).Info("count suffix omitted", "id", item.ID, "error", errString(err))
			continue
		}
		out[i].Count = n
		out[i].HasCount = true
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return "negative count"
	}
	return err.Error()
}
