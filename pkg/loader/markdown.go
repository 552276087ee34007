package loader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

var markdownCount = regexp.MustCompile(`^\s*\((\d+)\)`)

// loadMarkdown reads a bullet list of links:
//
//	- [News](/category/news/ "Latest updates") (12)
//	  - [Local](/category/news/local/) (3)
//
// The link title becomes the description and a trailing "(N)" the count.
// Nested items record their enclosing item as parent. IDs are assigned in
// document order starting at 1.
func loadMarkdown(data []byte) ([]widget.Category, error) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(data)

	var (
		out    []widget.Category
		stack  []string
		nextID = 1
	)
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		item, ok := node.(*ast.ListItem)
		if !ok {
			return ast.GoToNext
		}
		if !entering {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			return ast.GoToNext
		}

		c, found := categoryFromListItem(item)
		if !found {
			// keep the stack balanced for the matching exit
			stack = append(stack, parentOf(stack))
			return ast.GoToNext
		}
		c.ID = strconv.Itoa(nextID)
		nextID++
		c.Parent = parentOf(stack)
		out = append(out, c)
		stack = append(stack, c.ID)
		return ast.GoToNext
	})

	if len(out) == 0 {
		return nil, ErrEmptyInput
	}
	return out, nil
}

func parentOf(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}

// categoryFromListItem reads the first link in the item's own inline
// content, ignoring nested lists.
func categoryFromListItem(item *ast.ListItem) (widget.Category, bool) {
	var inlines []ast.Node
	for _, child := range item.GetChildren() {
		switch c := child.(type) {
		case *ast.Paragraph:
			inlines = append(inlines, c.GetChildren()...)
		case *ast.List:
		default:
			inlines = append(inlines, c)
		}
	}

	for i, inline := range inlines {
		link, ok := inline.(*ast.Link)
		if !ok {
			continue
		}
		c := widget.Category{
			Name:        strings.TrimSpace(inlineText(link)),
			Link:        string(link.Destination),
			Description: string(link.Title),
			Count:       UnknownCount,
		}
		if i+1 < len(inlines) {
			if txt, ok := inlines[i+1].(*ast.Text); ok {
				if m := markdownCount.FindSubmatch(txt.Literal); m != nil {
					if n, err := strconv.Atoi(string(m[1])); err == nil {
						c.Count = n
					}
				}
			}
		}
		return c, c.Name != ""
	}
	return widget.Category{}, false
}

func inlineText(node ast.Node) string {
	var sb strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Literal)
		case *ast.Code:
			sb.Write(t.Literal)
		}
		return ast.GoToNext
	})
	return sb.String()
}
