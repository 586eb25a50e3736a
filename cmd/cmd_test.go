package cmd

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	dir, err := ioutil.TempDir("", "orgtree-cmd-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "orgtree.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("store:\n  backend: memory\nseed:\n  enabled: true\n"), 0644))

	// resetting flags shared between runs
	search, expandAll, expandIDs, dumpNested, remote = "", false, nil, false, false

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))

	err = rootCmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestTreeCommand(t *testing.T) {
	a := assert.New(t)

	out, err := runCommand(t, "tree", "--entity", "dept", "--expand-all")
	a.NoError(err)
	a.Contains(out, "dept (5)")
	a.Contains(out, "前端组")
	a.Contains(out, "└─")

	// collapsed by default
	out, err = runCommand(t, "tree", "--entity", "dept")
	a.NoError(err)
	a.Contains(out, "总公司")
	a.NotContains(out, "前端组")

	out, err = runCommand(t, "tree", "--entity", "post", "--search", "cto")
	a.NoError(err)
	a.Contains(out, "CTO")
	a.NotContains(out, "CEO")

	_, err = runCommand(t, "tree", "--entity", "role")
	a.Error(err)
}

func TestStatsAndDumpCommands(t *testing.T) {
	a := assert.New(t)

	out, err := runCommand(t, "stats", "--entity", "menu")
	a.NoError(err)
	a.Contains(out, "menu: 17 nodes")

	out, err = runCommand(t, "dump", "--entity", "dict")
	a.NoError(err)
	a.True(strings.HasPrefix(strings.TrimSpace(out), "["))
	a.Contains(out, `"kind": "dict_type"`)

	out, err = runCommand(t, "candidates", "--entity", "dept")
	a.NoError(err)
	a.Contains(out, "市场部")
}
