// Package filter narrows the item list with a CEL predicate evaluated per
// category, e.g. `item.count > 0 && !item.name.startsWith("Uncat")`.
package filter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

// ItemVar is the variable a predicate uses to refer to the category.
const ItemVar = "item"

// Fields lists the attributes a predicate can read from ItemVar.
var Fields = []string{"id", "name", "link", "description", "count", "parent"}

// Filter is a compiled predicate. It is safe for concurrent use.
type Filter struct {
	expr   string
	prg    cel.Program
	fields []string
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(ItemVar, cel.MapType(cel.StringType, cel.DynType)),
		celext.Strings(),
		celext.Math(),
	)
}

// New compiles expr. The expression must yield a bool and may only read
// the attributes in Fields.
func New(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(types.BoolType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("filter must yield a bool, got %s", out)
	}

	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("inspect filter: %w", err)
	}
	fields := referencedFields(parsed.GetExpr())
	for _, f := range fields {
		if !known(f) {
			return nil, fmt.Errorf("unknown field %s.%s (have %s)", ItemVar, f, strings.Join(Fields, ", "))
		}
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Filter{expr: expr, prg: prg, fields: fields}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Referenced returns the item attributes the expression reads, sorted.
func (f *Filter) Referenced() []string { return append([]string(nil), f.fields...) }

// Match reports whether c satisfies the predicate.
func (f *Filter) Match(ctx context.Context, c widget.Category) (bool, error) {
	out, _, err := f.prg.ContextEval(ctx, map[string]any{ItemVar: activation(c)})
	if err != nil {
		return false, fmt.Errorf("eval error for %q: %w", c.Name, err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("filter yielded %s for %q, want bool", out.Type().TypeName(), c.Name)
	}
	return bool(b), nil
}

// Apply returns the categories that match, preserving order. The first
// evaluation error aborts.
func (f *Filter) Apply(ctx context.Context, cats []widget.Category) ([]widget.Category, error) {
	out := make([]widget.Category, 0, len(cats))
	for _, c := range cats {
		ok, err := f.Match(ctx, c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func activation(c widget.Category) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"link":        c.Link,
		"description": c.Description,
		"count":       int64(c.Count),
		"parent":      c.Parent,
	}
}

func known(field string) bool {
	for _, f := range Fields {
		if f == field {
			return true
		}
	}
	return false
}

// referencedFields collects item.<field> and item["<field>"] accesses.
func referencedFields(root *exprpb.Expr) []string {
	seen := map[string]bool{}
	var walk func(*exprpb.Expr)
	walk = func(e *exprpb.Expr) {
		if e == nil {
			return
		}
		switch k := e.GetExprKind().(type) {
		case *exprpb.Expr_SelectExpr:
			sel := k.SelectExpr
			if isItem(sel.GetOperand()) {
				seen[sel.GetField()] = true
				return
			}
			walk(sel.GetOperand())
		case *exprpb.Expr_CallExpr:
			call := k.CallExpr
			args := call.GetArgs()
			if call.GetFunction() == "_[_]" && len(args) == 2 && isItem(args[0]) {
				if s, ok := args[1].GetConstExpr().GetConstantKind().(*exprpb.Constant_StringValue); ok {
					seen[s.StringValue] = true
					return
				}
			}
			walk(call.GetTarget())
			for _, a := range args {
				walk(a)
			}
		case *exprpb.Expr_ComprehensionExpr:
			c := k.ComprehensionExpr
			walk(c.GetIterRange())
			walk(c.GetAccuInit())
			walk(c.GetLoopCondition())
			walk(c.GetLoopStep())
			walk(c.GetResult())
		case *exprpb.Expr_ListExpr:
			for _, el := range k.ListExpr.GetElements() {
				walk(el)
			}
		case *exprpb.Expr_StructExpr:
			for _, entry := range k.StructExpr.GetEntries() {
				walk(entry.GetMapKey())
				walk(entry.GetValue())
			}
		}
	}
	walk(root)

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func isItem(e *exprpb.Expr) bool {
	return e.GetIdentExpr().GetName() == ItemVar
}
