package tree

import (
	"github.com/agubarev/orgtree/pkg/util"
	"github.com/oklog/ulid"
)

// ParentCandidates returns the nodes a parent may be chosen from,
// in Flatten order
// NOTE: the excluded node and its whole subtree are left out, so
// picking any candidate as the new parent of excludeID can never
// form a cycle; leaf kinds are left out since they cannot hold children
func (f *Forest) ParentCandidates(excludeID ulid.ULID) []Item {
	excluded := f.subtree(excludeID)

	items := make([]Item, 0, len(f.nodes))
	for _, item := range f.Flatten() {
		if excluded[item.Node.ID] || item.Node.Kind().IsLeaf() {
			continue
		}

		items = append(items, item)
	}

	return items
}

// ParentCandidatesFor narrows ParentCandidates down to the nodes
// that can hold a child of a given kind
func (f *Forest) ParentCandidatesFor(excludeID ulid.ULID, child Kind) []Item {
	items := make([]Item, 0)
	for _, item := range f.ParentCandidates(excludeID) {
		if child.checkParent(item.Node.Kind()) == nil {
			items = append(items, item)
		}
	}

	return items
}

// subtree collects the ids of a node and all of its descendants
func (f *Forest) subtree(id ulid.ULID) map[ulid.ULID]bool {
	set := make(map[ulid.ULID]bool)
	if util.IsZeroULID(id) || !f.Has(id) {
		return set
	}

	stack := []ulid.ULID{id}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		set[top] = true
		stack = append(stack, f.nodes[top].children...)
	}

	return set
}
