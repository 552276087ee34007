package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/mccw/pkg/store"
	"github.com/oakwood-commons/mccw/pkg/widget"
)

var sample = StaticSource{
	{ID: "1", Name: "News", Link: "/news/", Count: 4},
	{ID: "2", Name: "Sport", Link: "/sport/", Count: 0},
	{ID: "3", Name: "Travel", Link: "/travel/", Count: 2},
}

// failingStore returns err from every call.
type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (widget.Settings, error) {
	return widget.Settings{}, f.err
}
func (f failingStore) Set(context.Context, string, widget.Settings) error { return f.err }
func (f failingStore) Delete(context.Context, string) error               { return f.err }
func (f failingStore) List(context.Context) ([]string, error)             { return nil, f.err }

func captureLogger(buf *bytes.Buffer) logr.Logger {
	return funcr.New(func(prefix, args string) {
		buf.WriteString(args)
		buf.WriteByte('\n')
	}, funcr.Options{Verbosity: 1})
}

func TestNewDefaults(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	assert.NotNil(t, e.Store)
	assert.NotNil(t, e.Widget)
	assert.Nil(t, e.Filter)

	got, err := e.Render(context.Background(), "mccw-1")
	require.NoError(t, err)
	assert.Equal(t, `<section class="widget widget_mccw"><h2 class="widget-title">Categories</h2>`+
		`<ul class="mccw-col-first mccw-col-last mccw-col-1"></ul></section>`, got)
}

func TestNewRejectsBadFilter(t *testing.T) {
	_, err := New(WithFilterExpr("item.slug == 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter")

	e, err := New(WithFilterExpr("   "))
	require.NoError(t, err)
	assert.Nil(t, e.Filter)
}

func TestDisplayUsesStoredSettings(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Set(ctx, "mccw-2", widget.Settings{Title: "Topics", Columns: 3, ShowCount: true}))

	e, err := New(WithStore(st), WithSource(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	args := widget.Args{BeforeWidget: "<div>", AfterWidget: "</div>", BeforeTitle: "<h3>", AfterTitle: "</h3>"}
	require.NoError(t, e.Display(ctx, &buf, "mccw-2", args))

	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "<div><h3>Topics</h3>"))
	assert.True(t, strings.HasSuffix(got, "</div>"))
	assert.Equal(t, 3, strings.Count(got, "<ul "))
	assert.Contains(t, got, `<span class="postcount">(4)</span>`)
	assert.Contains(t, got, `<span class="postcount">(0)</span>`)
}

func TestDisplayFallsBackOnStoreError(t *testing.T) {
	var logs bytes.Buffer
	e, err := New(WithStore(failingStore{err: errors.New("disk on fire")}), WithSource(sample), WithLogger(captureLogger(&logs)))
	require.NoError(t, err)

	got, err := e.Render(context.Background(), "mccw-3")
	require.NoError(t, err)
	assert.Contains(t, got, "Categories")
	assert.Equal(t, widget.DefaultColumns, strings.Count(got, "<ul "))
	assert.Contains(t, logs.String(), "disk on fire")
	assert.Contains(t, logs.String(), `"instance"="mccw-3"`)
}

func TestDisplaySourceError(t *testing.T) {
	var logs bytes.Buffer
	src := SourceFunc(func(context.Context) ([]widget.Category, error) {
		return nil, errors.New("source down")
	})
	e, err := New(WithSource(src), WithLogger(captureLogger(&logs)))
	require.NoError(t, err)

	got, err := e.Render(context.Background(), "mccw-4")
	require.NoError(t, err)
	assert.NotContains(t, got, "<li ")
	assert.Contains(t, logs.String(), "source down")
}

func TestDisplayFilter(t *testing.T) {
	ctx := context.Background()
	e, err := New(WithSource(sample), WithFilterExpr("item.count > 0"))
	require.NoError(t, err)

	items := e.Items(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, "News", items[0].Name)
	assert.Equal(t, "Travel", items[1].Name)
}

type brokenFilter struct{}

func (brokenFilter) Apply(context.Context, []widget.Category) ([]widget.Category, error) {
	return nil, errors.New("bad predicate")
}

func TestFilterErrorKeepsItems(t *testing.T) {
	var logs bytes.Buffer
	e, err := New(WithSource(sample), WithFilter(brokenFilter{}), WithLogger(captureLogger(&logs)))
	require.NoError(t, err)
	assert.Len(t, e.Items(context.Background()), 3)
	assert.Contains(t, logs.String(), "bad predicate")
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	st := store.NewMemory()
	require.NoError(t, st.Set(ctx, "mccw-5", widget.Settings{Title: "Old", Columns: 4, ShowCount: true}))
	e, err := New(WithStore(st), WithLogger(captureLogger(&logs)))
	require.NoError(t, err)

	next, err := e.Update(ctx, "mccw-5", map[string]string{
		widget.FieldTitle:   "<b>New</b>",
		widget.FieldColumns: "lots",
	})
	require.NoError(t, err)
	assert.Equal(t, widget.Settings{Title: "New", Columns: 4, ShowCount: false}, next)

	stored, err := st.Get(ctx, "mccw-5")
	require.NoError(t, err)
	assert.Equal(t, next, stored)
	assert.Contains(t, logs.String(), "corrected submitted settings")
}

func TestUpdateNewInstanceStartsFromDefaults(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	next, err := e.Update(context.Background(), "mccw-6", map[string]string{widget.FieldShowCount: "1"})
	require.NoError(t, err)
	assert.Equal(t, widget.Settings{Columns: widget.DefaultColumns, ShowCount: true}, next)
}

func TestUpdateWriteError(t *testing.T) {
	e, err := New(WithStore(failingStore{err: errors.New("read only")}))
	require.NoError(t, err)
	prev, err := e.Update(context.Background(), "mccw-7", map[string]string{widget.FieldColumns: "3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read only")
	assert.Equal(t, widget.DefaultSettings(), prev)
}

func TestWithDefaults(t *testing.T) {
	e, err := New(WithDefaults(widget.Settings{Title: "Browse", Columns: 0, ShowCount: true}))
	require.NoError(t, err)
	s := e.Settings(context.Background(), "fresh")
	assert.Equal(t, widget.Settings{Title: "Browse", Columns: 1, ShowCount: true}, s)
}

func TestSaveClampsColumns(t *testing.T) {
	ctx := context.Background()
	e, err := New()
	require.NoError(t, err)
	require.NoError(t, e.Save(ctx, "mccw-8", widget.Settings{Columns: -2}))
	assert.Equal(t, 1, e.Settings(ctx, "mccw-8").Columns)
}

func TestFormAndInstances(t *testing.T) {
	ctx := context.Background()
	e, err := New()
	require.NoError(t, err)
	require.NoError(t, e.Save(ctx, "b", widget.Settings{Title: "Bee", Columns: 2}))
	require.NoError(t, e.Save(ctx, "a", widget.Settings{Columns: 1}))

	form := e.Form(ctx, "b")
	assert.Contains(t, form, `value="Bee"`)

	ids, err := e.Instances(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, e.Delete(ctx, "b"))
	require.NoError(t, e.Delete(ctx, "never-saved"))
	ids, err = e.Instances(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestDeleteError(t *testing.T) {
	e, err := New(WithStore(failingStore{err: errors.New("locked")}))
	require.NoError(t, err)
	assert.Error(t, e.Delete(context.Background(), "x"))

	e, err = New(WithStore(failingStore{err: store.ErrNotFound}))
	require.NoError(t, err)
	assert.NoError(t, e.Delete(context.Background(), "x"))
}
