// Package render draws forests for the terminal
package render

import (
	"fmt"
	"strings"

	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/charmbracelet/lipgloss"
)

// palette
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorHeader = lipgloss.Color("#fe8019")
)

// styles
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeSpace  = "   "

	markerExpanded  = "▾ "
	markerCollapsed = "▸ "
	markerLeaf      = "  "
)

// Tree renders flattened items as an indented tree with box-drawing
// connectors; a nil expansion marks every interior node as expanded
func Tree(items []tree.Item, x *tree.Expansion) string {
	if len(items) == 0 {
		return StyleDim.Render("(empty)") + "\n"
	}

	var (
		b      strings.Builder
		lastAt = make([]bool, 0, 8)
	)

	for i, item := range items {
		last := isLast(items, i)

		// lastAt[d] tells whether the current ancestor at depth d closes its siblings,
		// search results may skip levels
		for len(lastAt) < item.Depth {
			lastAt = append(lastAt, true)
		}

		lastAt = append(lastAt[:item.Depth], last)

		var prefix string
		if item.Depth > 0 {
			for d := 1; d < item.Depth; d++ {
				if lastAt[d] {
					prefix += treeSpace
				} else {
					prefix += treePipe
				}
			}

			if last {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		marker := markerLeaf
		if item.HasChildren {
			if x == nil || x.IsExpanded(item.Node.ID) {
				marker = markerExpanded
			} else {
				marker = markerCollapsed
			}
		}

		b.WriteString(StyleDim.Render(prefix))
		b.WriteString(marker)
		b.WriteString(Line(item.Node))
		b.WriteString("\n")
	}

	return b.String()
}

// Line renders a single node: name, kind badge, detail and flags
func Line(n tree.Node) string {
	name := n.Name
	if n.Status == tree.StatusInactive {
		name = StyleDim.Render(name)
	}

	parts := []string{name, StyleBlue.Render(fmt.Sprintf("[%s]", n.Kind()))}

	if d := Detail(n); d != "" {
		parts = append(parts, StyleDim.Render(d))
	}

	if n.Status == tree.StatusInactive {
		parts = append(parts, StyleRed.Render("inactive"))
	}

	if !n.Visible {
		parts = append(parts, StyleYellow.Render("hidden"))
	}

	return strings.Join(parts, " ")
}

// Detail returns the most telling attribute of a node
func Detail(n tree.Node) string {
	switch p := n.Payload.(type) {
	case tree.Directory:
		return p.Path
	case tree.Menu:
		return strings.TrimSpace(p.Path + " " + p.Permission)
	case tree.Button:
		return p.Permission
	case tree.Department:
		return p.Leader
	case tree.DictType:
		return p.Type
	case tree.DictData:
		if p.IsDefault {
			return p.Value + " (default)"
		}

		return p.Value
	case tree.Post:
		return fmt.Sprintf("%s, %d users", p.Code, p.UserCount)
	default:
		return ""
	}
}

// Stats renders forest counters as a small table
func Stats(e tree.Entity, s tree.Stats) string {
	var b strings.Builder

	b.WriteString(StyleHeader.Render(fmt.Sprintf("%s: %d nodes", e, s.Total)))
	b.WriteString("\n")

	rows := [][2]string{
		{"roots", fmt.Sprint(s.Roots)},
		{"max depth", fmt.Sprint(s.MaxDepth)},
		{"inactive", fmt.Sprint(s.Inactive)},
		{"hidden", fmt.Sprint(s.Hidden)},
	}

	for _, k := range []tree.Kind{
		tree.KDirectory,
		tree.KMenu,
		tree.KButton,
		tree.KDepartment,
		tree.KDictType,
		tree.KDictData,
		tree.KPost,
	} {
		if n := s.ByKind[k]; n > 0 {
			rows = append(rows, [2]string{k.String(), fmt.Sprint(n)})
		}
	}

	label := lipgloss.NewStyle().Width(12)
	for _, r := range rows {
		b.WriteString("  " + label.Render(r[0]) + StyleGreen.Render(r[1]) + "\n")
	}

	return b.String()
}

// isLast tells whether the i-th item is the last one among its siblings
func isLast(items []tree.Item, i int) bool {
	depth := items[i].Depth
	for j := i + 1; j < len(items); j++ {
		if items[j].Depth < depth {
			return true
		}

		if items[j].Depth == depth {
			return false
		}
	}

	return true
}
