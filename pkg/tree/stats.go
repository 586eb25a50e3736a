package tree

// Stats is a summary of a forest shown on dashboard cards
type Stats struct {
	Total    int          `json:"total"`
	ByKind   map[Kind]int `json:"by_kind"`
	Hidden   int          `json:"hidden"`
	Inactive int          `json:"inactive"`
	Roots    int          `json:"roots"`
	MaxDepth int          `json:"max_depth"`
}

// Stats counts nodes of the forest
func (f *Forest) Stats() Stats {
	s := Stats{
		ByKind: make(map[Kind]int),
		Roots:  len(f.roots),
	}

	f.walk(func(e *entry, depth int) {
		s.Total++
		s.ByKind[e.node.Kind()]++

		if !e.node.Visible {
			s.Hidden++
		}

		if e.node.Status == StatusInactive {
			s.Inactive++
		}

		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
	})

	return s
}
