package tree

import (
	"strings"

	"github.com/oklog/ulid"
)

// Item is a single row of a flattened forest
type Item struct {
	Node        Node `json:"node"`
	Depth       int  `json:"depth"`
	HasChildren bool `json:"has_children"`
}

// Branch is a node along with its nested children
type Branch struct {
	Node     Node     `json:"node"`
	Children []Branch `json:"children,omitempty"`
}

// Flatten returns every node in pre-order, siblings in their order,
// annotated with depth (0 for roots)
func (f *Forest) Flatten() []Item {
	items := make([]Item, 0, len(f.nodes))
	f.walk(func(e *entry, depth int) {
		items = append(items, Item{
			Node:        e.node,
			Depth:       depth,
			HasChildren: len(e.children) > 0,
		})
	})

	return items
}

// Search returns flattened items whose name or kind-specific code
// (path, permission, dictionary type, post code) contains a given
// term, case-insensitively; an empty term matches everything
func (f *Forest) Search(term string) []Item {
	items := f.Flatten()

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}

	found := make([]Item, 0)
	for _, item := range items {
		if matches(item.Node, term) {
			found = append(found, item)
		}
	}

	return found
}

func matches(n Node, term string) bool {
	if strings.Contains(strings.ToLower(n.Name), term) {
		return true
	}

	for _, s := range searchTerms(n.Payload) {
		if s != "" && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}

	return false
}

// Tree returns the forest as nested branches
func (f *Forest) Tree() []Branch {
	return f.branches(f.roots)
}

func (f *Forest) branches(ids []ulid.ULID) []Branch {
	if len(ids) == 0 {
		return nil
	}

	bs := make([]Branch, 0, len(ids))
	for _, id := range ids {
		e := f.nodes[id]
		bs = append(bs, Branch{
			Node:     e.node,
			Children: f.branches(e.children),
		})
	}

	return bs
}
