// Package columns splits an ordered list into a fixed number of contiguous,
// near-equal column groups and tags each group with its position.
package columns

// Role describes where a group sits in the rendered row of columns.
type Role int

const (
	// RoleFirst marks the leftmost group when more than one group exists.
	RoleFirst Role = iota
	// RoleMiddle marks every group between the first and the last.
	RoleMiddle
	// RoleLast marks the rightmost group when more than one group exists.
	RoleLast
	// RoleFirstLast marks the only group of a single-column layout.
	RoleFirstLast
)

// String returns a stable lowercase name for the role.
func (r Role) String() string {
	switch r {
	case RoleFirst:
		return "first"
	case RoleMiddle:
		return "middle"
	case RoleLast:
		return "last"
	case RoleFirstLast:
		return "first-last"
	default:
		return "unknown"
	}
}

// IsFirst reports whether the group opens the layout.
func (r Role) IsFirst() bool { return r == RoleFirst || r == RoleFirstLast }

// IsLast reports whether the group closes the layout.
func (r Role) IsLast() bool { return r == RoleLast || r == RoleFirstLast }

// Classes returns the role's CSS class names, each carrying prefix.
func (r Role) Classes(prefix string) string {
	switch r {
	case RoleFirst:
		return prefix + "col-first"
	case RoleLast:
		return prefix + "col-last"
	case RoleFirstLast:
		return prefix + "col-first " + prefix + "col-last"
	case RoleMiddle:
		return prefix + "col"
	default:
		return prefix + "col"
	}
}

// Group is one contiguous run of the input assigned to a single column.
type Group[T any] struct {
	Role  Role
	Index int // 1-based
	Items []T
}

// Plan is the computed layout for n items.
type Plan struct {
	// PerColumn is the capacity of every column but the last.
	PerColumn int
	// Columns is the number of groups actually produced. It can be lower
	// than the requested count when items are sparse.
	Columns int
}

// PlanFor computes the layout of n items over the requested column count.
// A request below 1 is treated as 1. Zero items plan a single empty column.
func PlanFor(n, requested int) Plan {
	if requested < 1 {
		requested = 1
	}
	if n <= 0 {
		return Plan{PerColumn: 0, Columns: 1}
	}
	per := ceilDiv(n, requested)
	return Plan{PerColumn: per, Columns: ceilDiv(n, per)}
}

// Distribute partitions items, in order, into groups of PlanFor(len(items),
// columns).PerColumn items each; the last group holds the remainder.
// Concatenating the groups' items reproduces the input. Empty input yields
// one empty group tagged RoleFirstLast.
//
// Group item slices share the input's backing array.
func Distribute[T any](items []T, columns int) []Group[T] {
	plan := PlanFor(len(items), columns)
	if len(items) == 0 {
		return []Group[T]{{Role: RoleFirstLast, Index: 1, Items: items}}
	}

	groups := make([]Group[T], 0, plan.Columns)
	for start := 0; start < len(items); start += plan.PerColumn {
		end := min(start+plan.PerColumn, len(items))
		idx := len(groups) + 1
		groups = append(groups, Group[T]{
			Role:  roleAt(idx, plan.Columns),
			Index: idx,
			Items: items[start:end:end],
		})
	}
	return groups
}

func roleAt(index, total int) Role {
	switch {
	case total == 1:
		return RoleFirstLast
	case index == 1:
		return RoleFirst
	case index == total:
		return RoleLast
	default:
		return RoleMiddle
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
