package widget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(n int) []Category {
	items := make([]Category, n)
	for i := range items {
		items[i] = Category{
			ID:   fmt.Sprint(i + 1),
			Name: fmt.Sprintf("Cat %d", i+1),
			Link: fmt.Sprintf("https://example.com/category/%d/", i+1),
		}
	}
	return items
}

func TestRenderSingleItem(t *testing.T) {
	items := []Category{{ID: "7", Name: "News", Link: "https://example.com/news/", Description: "Latest", Count: 5}}

	got := Render(DefaultSettings(), items)

	want := `<h2 class="widget-title">Categories</h2>` +
		`<ul class="mccw-col-first mccw-col-last mccw-col-1">` +
		`<li class="cat-item cat-item-7"><a href="https://example.com/news/" title="Latest">News</a></li>` +
		`</ul>`
	assert.Equal(t, want, got)
}

func TestRenderColumnClasses(t *testing.T) {
	got := Render(Settings{Columns: 3}, makeItems(7))

	assert.Equal(t, 3, strings.Count(got, "<ul "))
	assert.Equal(t, 3, strings.Count(got, "</ul>"))
	assert.Equal(t, 7, strings.Count(got, "<li "))

	first := strings.Index(got, `<ul class="mccw-col-first mccw-col-1">`)
	middle := strings.Index(got, `<ul class="mccw-col mccw-col-2">`)
	last := strings.Index(got, `<ul class="mccw-col-last mccw-col-3">`)
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, middle)
	require.NotEqual(t, -1, last)
	assert.Less(t, first, middle)
	assert.Less(t, middle, last)

	// 3 + 3 + 1: the last list holds only the seventh item
	assert.Equal(t, `<ul class="mccw-col-last mccw-col-3"><li class="cat-item cat-item-7"><a href="https://example.com/category/7/" title="">Cat 7</a></li></ul>`,
		got[last:])
}

func TestRenderFewerListsThanRequested(t *testing.T) {
	got := Render(Settings{Columns: 5}, makeItems(3))
	assert.Equal(t, 3, strings.Count(got, "<ul "))
	assert.Contains(t, got, "mccw-col-last mccw-col-3")
	assert.NotContains(t, got, "mccw-col-4")
}

func TestRenderPreservesOrder(t *testing.T) {
	items := makeItems(10)
	got := Render(Settings{Columns: 4}, items)

	pos := -1
	for _, item := range items {
		idx := strings.Index(got, ">"+item.Name+"</a>")
		require.Greater(t, idx, pos, "item %s out of order", item.Name)
		pos = idx
	}
}

func TestRenderEmptyItems(t *testing.T) {
	got := Render(Settings{Title: "Topics", Columns: 3}, nil)
	assert.Equal(t, `<h2 class="widget-title">Topics</h2><ul class="mccw-col-first mccw-col-last mccw-col-1"></ul>`, got)
}

func TestRenderColumnCountClamped(t *testing.T) {
	for _, c := range []int{0, -4} {
		got := Render(Settings{Columns: c}, makeItems(4))
		assert.Equal(t, 1, strings.Count(got, "<ul "), "columns=%d", c)
	}
}

func TestRenderTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "default when empty", title: "", want: `<h2 class="widget-title">Categories</h2>`},
		{name: "default when blank", title: "   ", want: `<h2 class="widget-title">Categories</h2>`},
		{name: "custom", title: "Browse", want: `<h2 class="widget-title">Browse</h2>`},
		{name: "escaped", title: "<b>Bold</b>", want: `<h2 class="widget-title">&lt;b&gt;Bold&lt;/b&gt;</h2>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(Settings{Title: tt.title, Columns: 1}, nil)
			assert.True(t, strings.HasPrefix(got, tt.want), "got %q", got)
		})
	}
}

func TestRenderEscapesItemFields(t *testing.T) {
	items := []Category{{
		ID:          "3",
		Name:        "Arts & Crafts",
		Link:        "https://example.com/arts/",
		Description: `Glue "and" paper`,
	}}
	got := Render(Settings{Columns: 1}, items)
	assert.Contains(t, got, `title="Glue &#34;and&#34; paper"`)
	assert.Contains(t, got, `>Arts &amp; Crafts</a>`)
}

func TestRenderRejectsScriptLinks(t *testing.T) {
	items := []Category{{ID: "1", Name: "x", Link: "javascript:alert(1)"}}
	got := Render(Settings{Columns: 1}, items)
	assert.NotContains(t, got, "javascript:")
}

func TestRenderCountSuffix(t *testing.T) {
	items := []Category{{ID: "1", Name: "News", Link: "/news/", Count: 5}}

	withCount := Render(Settings{Columns: 1, ShowCount: true}, items)
	assert.Contains(t, withCount, `News</a> <span class="postcount">(5)</span></li>`)

	withoutCount := Render(Settings{Columns: 1, ShowCount: false}, items)
	assert.Contains(t, withoutCount, `News</a></li>`)
	assert.NotContains(t, withoutCount, "postcount")
}

func TestRenderZeroCountIsShown(t *testing.T) {
	items := []Category{{ID: "1", Name: "Empty", Link: "/empty/", Count: 0}}
	got := Render(Settings{Columns: 1, ShowCount: true}, items)
	assert.Contains(t, got, `<span class="postcount">(0)</span>`)
}

func TestRenderUnresolvableCountOmitsSuffix(t *testing.T) {
	items := []Category{
		{ID: "1", Name: "Known", Link: "/known/"},
		{ID: "2", Name: "Unknown", Link: "/unknown/"},
		{ID: "3", Name: "Broken", Link: "/broken/"},
	}
	resolver := CountResolverFunc(func(_ context.Context, item Category) (int, error) {
		switch item.ID {
		case "1":
			return 12, nil
		case "2":
			return 0, ErrCountUnavailable
		default:
			return -1, nil
		}
	})
	w := New(WithCountResolver(resolver))

	got := w.Render(context.Background(), Settings{Columns: 1, ShowCount: true}, items)
	assert.Contains(t, got, `Known</a> <span class="postcount">(12)</span>`)
	assert.Contains(t, got, `Unknown</a></li>`)
	assert.Contains(t, got, `Broken</a></li>`)
	assert.Equal(t, 1, strings.Count(got, "postcount"))
}

func TestCountsByIDUsesID(t *testing.T) {
	// two categories share a name; counts must follow the id
	items := []Category{
		{ID: "10", Name: "Travel", Link: "/a/"},
		{ID: "11", Name: "Travel", Link: "/b/"},
	}
	w := New(WithCountResolver(CountsByID{"10": 1, "11": 2}))
	got := w.Render(context.Background(), Settings{Columns: 1, ShowCount: true}, items)
	assert.Contains(t, got, `href="/a/" title="">Travel</a> <span class="postcount">(1)</span>`)
	assert.Contains(t, got, `href="/b/" title="">Travel</a> <span class="postcount">(2)</span>`)
}

func TestItemCounts(t *testing.T) {
	n, err := ItemCounts{}.ResolveCount(context.Background(), Category{Count: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = ItemCounts{}.ResolveCount(context.Background(), Category{Count: -1})
	assert.ErrorIs(t, err, ErrCountUnavailable)
}

func TestWidgetOptions(t *testing.T) {
	w := New(
		WithClassPrefix("cc-"),
		WithLabels(Labels{DefaultTitle: "Kategorien", WidgetName: "Mehrspaltige Kategorien"}),
	)
	got := w.Render(context.Background(), Settings{Columns: 2}, makeItems(2))
	assert.Contains(t, got, `<h2 class="widget-title">Kategorien</h2>`)
	assert.Contains(t, got, `<ul class="cc-col-first cc-col-1">`)
	assert.Contains(t, got, `<ul class="cc-col-last cc-col-2">`)
	assert.Equal(t, "Mehrspaltige Kategorien", w.Name())
	assert.Equal(t, "Title", w.Labels().TitleField, "unset labels keep English defaults")
	assert.Equal(t, ComponentID, w.ID())
}

func TestDisplaySplicesWrapper(t *testing.T) {
	args := Args{
		BeforeWidget: `<li id="mccw-2" class="widget">`,
		AfterWidget:  `</li>`,
		BeforeTitle:  `<h3>`,
		AfterTitle:   `</h3>`,
	}
	var buf bytes.Buffer
	err := New().Display(context.Background(), &buf, args, Settings{Title: "Topics", Columns: 1}, makeItems(1))
	require.NoError(t, err)

	want := `<li id="mccw-2" class="widget"><h3>Topics</h3>` +
		`<ul class="mccw-col-first mccw-col-last mccw-col-1">` +
		`<li class="cat-item cat-item-1"><a href="https://example.com/category/1/" title="">Cat 1</a></li>` +
		`</ul></li>`
	assert.Equal(t, want, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestDisplayReturnsWriteError(t *testing.T) {
	err := New().Display(context.Background(), failingWriter{}, DefaultArgs(), DefaultSettings(), nil)
	assert.EqualError(t, err, "closed")
}
