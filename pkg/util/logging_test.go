package util_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/agubarev/orgtree/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerToFiles(t *testing.T) {
	a := assert.New(t)

	dir, err := ioutil.TempDir("", "orgtree-log-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	logDir := filepath.Join(dir, "nested")

	l, err := util.DefaultLogger(false, logDir)
	a.NoError(err)
	a.NotNil(l)

	l.Info("hello")
	l.Error("broken")
	a.NoError(l.Sync())

	std, err := ioutil.ReadFile(filepath.Join(logDir, "standard.log"))
	a.NoError(err)
	a.Contains(string(std), "hello")
	a.NotContains(string(std), "broken")

	errs, err := ioutil.ReadFile(filepath.Join(logDir, "errors.log"))
	a.NoError(err)
	a.Contains(string(errs), "broken")
}
