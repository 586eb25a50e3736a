package render_test

import (
	"strings"
	"testing"

	"github.com/agubarev/orgtree/internal/render"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deptForest(t *testing.T) *tree.Forest {
	f, err := tree.NewForest(tree.EntityDept)
	require.NoError(t, err)

	fx, err := tree.DefaultFixture(tree.EntityDept)
	require.NoError(t, err)

	_, err = f.Seed(fx)
	require.NoError(t, err)

	return f
}

func TestTree(t *testing.T) {
	a := assert.New(t)
	f := deptForest(t)

	out := render.Tree(f.Flatten(), nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)

	a.Contains(lines[0], "总公司")
	a.Contains(lines[0], "▾")
	a.Contains(lines[1], "├─")
	a.Contains(lines[1], "技术部")
	a.Contains(lines[2], "│  ├─")
	a.Contains(lines[2], "前端组")
	a.Contains(lines[3], "│  └─")
	a.Contains(lines[3], "后端组")
	a.Contains(lines[4], "└─")
	a.Contains(lines[4], "市场部")
	a.Contains(lines[4], "[department]")
}

func TestTreeCollapsed(t *testing.T) {
	a := assert.New(t)
	f := deptForest(t)

	// nothing expanded, only roots are visible
	x := tree.NewExpansion()
	out := render.Tree(x.Visible(f), x)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	a.Len(lines, 1)
	a.Contains(lines[0], "▸")

	a.Contains(render.Tree(nil, nil), "(empty)")
}

func TestLineAndStats(t *testing.T) {
	a := assert.New(t)

	f, err := tree.NewForest(tree.EntityPost)
	require.NoError(t, err)

	fx, err := tree.DefaultFixture(tree.EntityPost)
	require.NoError(t, err)

	_, err = f.Seed(fx)
	require.NoError(t, err)

	items := f.Search("QA")
	require.Len(t, items, 1)

	line := render.Line(items[0].Node)
	a.Contains(line, "[post]")
	a.Contains(line, "QA, 0 users")
	a.Contains(line, "inactive")
	a.NotContains(line, "hidden")

	stats := render.Stats(tree.EntityPost, f.Stats())
	a.Contains(stats, "post: 6 nodes")
	a.Contains(stats, "inactive")
}
