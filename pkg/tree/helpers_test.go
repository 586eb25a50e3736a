package tree_test

import (
	"testing"

	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/oklog/ulid"
	"github.com/stretchr/testify/require"
)

func seededForest(t *testing.T, e tree.Entity) (*tree.Forest, map[string]ulid.ULID) {
	f, err := tree.NewForest(e)
	require.NoError(t, err)

	fx, err := tree.DefaultFixture(e)
	require.NoError(t, err)

	n, err := f.Seed(fx)
	require.NoError(t, err)
	require.Equal(t, fx.Count(), n)

	return f, idsByName(f)
}

func idsByName(f *tree.Forest) map[string]ulid.ULID {
	ids := make(map[string]ulid.ULID, f.Len())
	for _, item := range f.Flatten() {
		ids[item.Node.Name] = item.Node.ID
	}

	return ids
}

func names(items []tree.Item) []string {
	ns := make([]string, 0, len(items))
	for _, item := range items {
		ns = append(ns, item.Node.Name)
	}

	return ns
}

func dept(name string, sort int) tree.NodeInput {
	return tree.NodeInput{
		Kind:       tree.KDepartment,
		Name:       name,
		SortOrder:  sort,
		Attributes: tree.Attributes{Leader: "测试"},
	}
}

func directory(name, path string, sort int) tree.NodeInput {
	return tree.NodeInput{
		Kind:       tree.KDirectory,
		Name:       name,
		SortOrder:  sort,
		Attributes: tree.Attributes{Path: path},
	}
}

func page(name, path, component string, sort int) tree.NodeInput {
	return tree.NodeInput{
		Kind:       tree.KMenu,
		Name:       name,
		SortOrder:  sort,
		Attributes: tree.Attributes{Path: path, Component: component},
	}
}

func button(name, permission string, sort int) tree.NodeInput {
	return tree.NodeInput{
		Kind:       tree.KButton,
		Name:       name,
		SortOrder:  sort,
		Attributes: tree.Attributes{Permission: permission},
	}
}

func post(name, code string, users int) tree.NodeInput {
	return tree.NodeInput{
		Kind:       tree.KPost,
		Name:       name,
		Attributes: tree.Attributes{Code: code, UserCount: users},
	}
}
