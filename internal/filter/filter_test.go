package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

var sample = []widget.Category{
	{ID: "1", Name: "News", Link: "/news/", Count: 12},
	{ID: "2", Name: "Uncategorized", Link: "/uncategorized/", Count: 0},
	{ID: "3", Name: "Sport", Link: "/sport/", Description: "Games", Count: 3},
	{ID: "4", Name: "Nature", Link: "/nature/", Count: -1},
}

func names(cats []widget.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Name
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{name: "positive counts", expr: "item.count > 0", want: []string{"News", "Sport"}},
		{name: "string function", expr: `item.name.startsWith("N")`, want: []string{"News", "Nature"}},
		{name: "negation", expr: `!item.name.startsWith("Uncat")`, want: []string{"News", "Sport", "Nature"}},
		{name: "index access", expr: `item["description"] != ""`, want: []string{"Sport"}},
		{name: "membership", expr: `item.id in ["2", "4"]`, want: []string{"Uncategorized", "Nature"}},
		{name: "lower ascii", expr: `item.link.lowerAscii().contains("sport")`, want: []string{"Sport"}},
		{name: "matches none", expr: "false", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.expr)
			require.NoError(t, err)
			got, err := f.Apply(context.Background(), sample)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{name: "empty", expr: "  ", wantErr: "empty"},
		{name: "syntax", expr: "item.count >", wantErr: "compilation error"},
		{name: "unknown variable", expr: "category.count > 0", wantErr: "compilation error"},
		{name: "not a predicate", expr: "1 + 2", wantErr: "must yield a bool"},
		{name: "unknown field", expr: "item.slug == 'x'", wantErr: "unknown field item.slug"},
		{name: "unknown indexed field", expr: `item["slug"] == "x"`, wantErr: "unknown field item.slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.expr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReferenced(t *testing.T) {
	f, err := New(`item.count > 0 && (item.name.size() > 2 || item["link"] == "/") && [1].all(x, x > 0)`)
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "link", "name"}, f.Referenced())
	assert.Equal(t, `item.count > 0 && (item.name.size() > 2 || item["link"] == "/") && [1].all(x, x > 0)`, f.String())
}

func TestMatchNonBoolResult(t *testing.T) {
	f, err := New("item.name")
	require.NoError(t, err)
	_, err = f.Match(context.Background(), sample[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want bool")

	_, err = f.Apply(context.Background(), sample)
	assert.Error(t, err)
}
