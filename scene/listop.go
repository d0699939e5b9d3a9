package scene

import "sort"

// ListOpItemType states what kind of items a list operation edits; it
// selects the wire tag on encode.
type ListOpItemType uint8

const (
	ListOpTokens ListOpItemType = iota
	ListOpStrings
	ListOpPaths
)

// ListOp is a composable edit over an ordered collection, used for
// relationship targets, attribute connections and composition arcs. When
// IsExplicit is set the Explicit list fully replaces any prior state;
// otherwise the edit lists combine per Compose.
type ListOp struct {
	ItemType   ListOpItemType
	IsExplicit bool

	Explicit  []string
	Added     []string
	Prepended []string
	Appended  []string
	Deleted   []string
	Ordered   []string
}

func (*ListOp) isValue() {}

// IsEmpty reports whether the op carries no items at all.
func (l *ListOp) IsEmpty() bool {
	return !l.IsExplicit &&
		len(l.Explicit) == 0 && len(l.Added) == 0 && len(l.Prepended) == 0 &&
		len(l.Appended) == 0 && len(l.Deleted) == 0 && len(l.Ordered) == 0
}

// Compose resolves the op against an empty prior state.
//
// Explicit ops return the explicit list as-is. Otherwise the result is
// (added ∪ prepended ∪ appended) − deleted, ordered per the Ordered list
// when present (items the ordered list does not mention keep their original
// relative order and follow the ordered ones), else lexicographically.
//
// Returns:
//   - []string: Composed items; never nil for a non-empty op
func (l *ListOp) Compose() []string {
	if l.IsExplicit {
		out := make([]string, len(l.Explicit))
		copy(out, l.Explicit)

		return out
	}

	deleted := make(map[string]struct{}, len(l.Deleted))
	for _, it := range l.Deleted {
		deleted[it] = struct{}{}
	}

	seen := make(map[string]struct{})
	var items []string
	for _, src := range [][]string{l.Added, l.Prepended, l.Appended} {
		for _, it := range src {
			if _, dead := deleted[it]; dead {
				continue
			}
			if _, dup := seen[it]; dup {
				continue
			}
			seen[it] = struct{}{}
			items = append(items, it)
		}
	}

	if len(l.Ordered) == 0 {
		sort.Strings(items)
		return items
	}

	rank := make(map[string]int, len(l.Ordered))
	for i, it := range l.Ordered {
		rank[it] = i
	}

	ordered := make([]string, 0, len(items))
	var rest []string
	for _, it := range l.Ordered {
		if _, ok := seen[it]; ok {
			if _, dead := deleted[it]; !dead {
				ordered = append(ordered, it)
			}
		}
	}
	for _, it := range items {
		if _, ok := rank[it]; !ok {
			rest = append(rest, it)
		}
	}

	return append(ordered, rest...)
}
