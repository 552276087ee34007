package loader

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

// UnknownCount marks a category whose source carried no count.
const UnknownCount = -1

// Field aliases accepted for each category attribute. The second spelling of
// each is the one used by WordPress term exports.
var (
	idKeys          = []string{"id", "term_id", "cat_ID"}
	nameKeys        = []string{"name", "cat_name"}
	linkKeys        = []string{"link", "url", "href"}
	descriptionKeys = []string{"description", "category_description"}
	countKeys       = []string{"count", "item_count", "itemCount", "category_count"}
	parentKeys      = []string{"parent", "category_parent"}
	collectionKeys  = []string{"categories", "items"}
)

func categoriesFromDocs(docs []any) ([]widget.Category, error) {
	var out []widget.Category
	for _, doc := range docs {
		cats, err := categoriesFromNode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, cats...)
	}
	return out, nil
}

func categoriesFromNode(node any) ([]widget.Category, error) {
	switch v := node.(type) {
	case []any:
		out := make([]widget.Category, 0, len(v))
		for i, elem := range v {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("category %d: expected an object, got %T", i+1, elem)
			}
			c, err := categoryFromMap(m)
			if err != nil {
				return nil, fmt.Errorf("category %d: %w", i+1, err)
			}
			out = append(out, c)
		}
		return out, nil
	case map[string]any:
		for _, key := range collectionKeys {
			if inner, ok := v[key]; ok {
				return categoriesFromNode(inner)
			}
		}
		c, err := categoryFromMap(v)
		if err != nil {
			return nil, err
		}
		return []widget.Category{c}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected a list of categories, got %T", node)
	}
}

func categoryFromMap(m map[string]any) (widget.Category, error) {
	c := widget.Category{
		ID:          scalarString(lookup(m, idKeys)),
		Name:        scalarString(lookup(m, nameKeys)),
		Link:        scalarString(lookup(m, linkKeys)),
		Description: scalarString(lookup(m, descriptionKeys)),
		Count:       UnknownCount,
		Parent:      parentID(lookup(m, parentKeys)),
	}
	if strings.TrimSpace(c.Name) == "" {
		return c, fmt.Errorf("missing name")
	}
	if c.ID == "" {
		c.ID = slug(c.Name)
	}
	if raw := lookup(m, countKeys); raw != nil {
		n, err := scalarInt(raw)
		if err != nil {
			return c, fmt.Errorf("count of %q: %w", c.Name, err)
		}
		c.Count = n
	}
	return c, nil
}

func lookup(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

func scalarInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("not a whole number: %v", t)
		}
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("unsupported count type %T", v)
	}
}

// parentID normalizes the parent reference; 0 and empty mean top level.
func parentID(v any) string {
	s := strings.TrimSpace(scalarString(v))
	if s == "0" {
		return ""
	}
	return s
}

func slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

// TopLevel returns the categories without a parent, in order.
func TopLevel(cats []widget.Category) []widget.Category {
	out := make([]widget.Category, 0, len(cats))
	for _, c := range cats {
		if c.Parent == "" {
			out = append(out, c)
		}
	}
	return out
}

// SortByName orders cats by name using the collation rules of tag,
// ignoring case. Equal names keep their relative order.
func SortByName(cats []widget.Category, tag language.Tag) {
	col := collate.New(tag, collate.IgnoreCase)
	sort.SliceStable(cats, func(i, j int) bool {
		return col.CompareString(cats[i].Name, cats[j].Name) < 0
	})
}
