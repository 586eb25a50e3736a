package tree

import (
	"sort"

	"github.com/oklog/ulid"
)

// Expansion tracks which nodes of a single view are expanded
// NOTE: purely presentational, it never touches forest data and ids
// of nodes that no longer exist are simply ignored
type Expansion struct {
	ids map[ulid.ULID]struct{}
}

// NewExpansion returns an expansion state with given ids expanded
func NewExpansion(ids ...ulid.ULID) *Expansion {
	x := &Expansion{ids: make(map[ulid.ULID]struct{}, len(ids))}
	for _, id := range ids {
		x.ids[id] = struct{}{}
	}

	return x
}

func (x *Expansion) init() {
	if x.ids == nil {
		x.ids = make(map[ulid.ULID]struct{})
	}
}

// Toggle flips the expanded state of a node
func (x *Expansion) Toggle(id ulid.ULID) {
	x.init()

	if _, ok := x.ids[id]; ok {
		delete(x.ids, id)
		return
	}

	x.ids[id] = struct{}{}
}

// Expand marks a node as expanded
func (x *Expansion) Expand(id ulid.ULID) {
	x.init()
	x.ids[id] = struct{}{}
}

// Collapse marks a node as collapsed
func (x *Expansion) Collapse(id ulid.ULID) {
	delete(x.ids, id)
}

// IsExpanded tells whether a node is expanded
func (x *Expansion) IsExpanded(id ulid.ULID) bool {
	_, ok := x.ids[id]
	return ok
}

// ExpandAll replaces the expanded set with every node that has children
func (x *Expansion) ExpandAll(f *Forest) {
	x.ids = make(map[ulid.ULID]struct{}, len(f.nodes))

	for id, e := range f.nodes {
		if len(e.children) > 0 {
			x.ids[id] = struct{}{}
		}
	}
}

// CollapseAll clears the expanded set
func (x *Expansion) CollapseAll() {
	x.ids = make(map[ulid.ULID]struct{})
}

// IDs returns expanded ids in ascending order
func (x *Expansion) IDs() []ulid.ULID {
	ids := make([]ulid.ULID, 0, len(x.ids))
	for id := range x.ids {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Compare(ids[j]) < 0
	})

	return ids
}

// Visible returns the flattened rows shown by a view, children are
// only revealed under expanded nodes
func (x *Expansion) Visible(f *Forest) []Item {
	items := make([]Item, 0)

	// depth of the shallowest collapsed ancestor seen so far, -1 for none
	hiddenBelow := -1
	for _, item := range f.Flatten() {
		if hiddenBelow >= 0 {
			if item.Depth > hiddenBelow {
				continue
			}

			hiddenBelow = -1
		}

		items = append(items, item)

		if item.HasChildren && !x.IsExpanded(item.Node.ID) {
			hiddenBelow = item.Depth
		}
	}

	return items
}
