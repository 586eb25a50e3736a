package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agubarev/orgtree/internal/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) (string, func()) {
	dir, err := ioutil.TempDir("", "orgtree-config-")
	require.NoError(t, err)

	path := filepath.Join(dir, "orgtree.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(body), 0644))

	return path, func() { os.RemoveAll(dir) }
}

func TestLoadFile(t *testing.T) {
	a := assert.New(t)

	path, cleanup := writeConfig(t, `
server:
  addr: 127.0.0.1:9000
  read_timeout: 3s
store:
  backend: sql
  sql:
    driver: sqlite
    dsn: "file:orgtree.db"
cache:
  enabled: true
  ttl: 1m
seed:
  enabled: false
`)
	defer cleanup()

	c, err := config.Load(path)
	a.NoError(err)
	a.Equal("127.0.0.1:9000", c.Server.Addr)
	a.Equal(3*time.Second, c.Server.ReadTimeout)
	a.Equal(10*time.Second, c.Server.WriteTimeout)
	a.Equal(config.BackendSQL, c.Store.Backend)
	a.Equal("file:orgtree.db", c.Store.SQL.DSN)
	a.True(c.Cache.Enabled)
	a.Equal(time.Minute, c.Cache.TTL)
	a.False(c.Seed.Enabled)

	// the default badger directory is expanded
	a.NotContains(c.Store.Badger.Dir, "~")
}

func TestLoadEnvOverride(t *testing.T) {
	a := assert.New(t)

	path, cleanup := writeConfig(t, "store:\n  backend: memory\n")
	defer cleanup()

	os.Setenv("ORGTREE_STORE_BACKEND", "badger")
	os.Setenv("ORGTREE_LOG_DEBUG", "true")
	defer os.Unsetenv("ORGTREE_STORE_BACKEND")
	defer os.Unsetenv("ORGTREE_LOG_DEBUG")

	c, err := config.Load(path)
	a.NoError(err)
	a.Equal(config.BackendBadger, c.Store.Backend)
	a.True(c.Log.Debug)
}

func TestLoadInvalid(t *testing.T) {
	a := assert.New(t)

	path, cleanup := writeConfig(t, "store:\n  backend: cassandra\n")
	defer cleanup()

	_, err := config.Load(path)
	a.Equal(config.ErrInvalidBackend, errors.Cause(err))

	path, cleanup = writeConfig(t, "store:\n  backend: sql\n  sql:\n    driver: oracle\n    dsn: x\n")
	defer cleanup()

	_, err = config.Load(path)
	a.Equal(config.ErrInvalidConfig, errors.Cause(err))

	_, err = config.Load("/nonexistent/orgtree.yaml")
	a.Error(err)
}
