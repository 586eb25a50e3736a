package config

import (
	"strings"
	"time"

	"github.com/agubarev/orgtree/pkg/util"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// store backends
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQL    = "sql"
)

// errors
var (
	ErrInvalidBackend = errors.New("invalid store backend")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// EnvPrefix is prepended to every environment override,
// i.e. ORGTREE_STORE_BACKEND overrides store.backend
const EnvPrefix = "ORGTREE"

// Config is the complete process configuration
type Config struct {
	Server struct {
		Addr         string        `mapstructure:"addr"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"server"`

	Store struct {
		Backend string `mapstructure:"backend"`
		Badger  struct {
			Dir string `mapstructure:"dir"`
		} `mapstructure:"badger"`
		SQL struct {
			Driver string `mapstructure:"driver"`
			DSN    string `mapstructure:"dsn"`
		} `mapstructure:"sql"`
	} `mapstructure:"store"`

	Cache struct {
		Enabled bool          `mapstructure:"enabled"`
		TTL     time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`

	Log struct {
		Dir   string `mapstructure:"dir"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"log"`

	Seed struct {
		Enabled bool   `mapstructure:"enabled"`
		File    string `mapstructure:"file"`
	} `mapstructure:"seed"`

	Client struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"client"`
}

var defaults = map[string]interface{}{
	"server.addr":          ":8080",
	"server.read_timeout":  "10s",
	"server.write_timeout": "10s",
	"store.backend":        BackendMemory,
	"store.badger.dir":     "~/.orgtree/badger",
	"store.sql.driver":     "sqlite",
	"store.sql.dsn":        "",
	"cache.enabled":        false,
	"cache.ttl":            "5m",
	"log.dir":              "",
	"log.debug":            false,
	"seed.enabled":         true,
	"seed.file":            "",
	"client.url":           "http://localhost:8080",
	"client.timeout":       "10s",
}

// Load reads configuration from a given file, or $HOME/.orgtree.yaml
// (and ./.orgtree.yaml) when the path is empty, applying environment
// overrides on top
func Load(path string) (Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := util.ExpandPath(path)
		if err != nil {
			return Config{}, err
		}

		v.SetConfigFile(expanded)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			v.AddConfigPath(home)
		}

		v.AddConfigPath(".")
		v.SetConfigName(".orgtree")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// the default config file is optional
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			return Config{}, errors.Wrap(err, "failed to read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	if err := c.expandPaths(); err != nil {
		return Config{}, err
	}

	return c, c.Validate()
}

// Validate checks the configuration for consistency
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendBadger:
		if c.Store.Badger.Dir == "" {
			return errors.Wrap(ErrInvalidConfig, "store.badger.dir is empty")
		}
	case BackendSQL:
		switch c.Store.SQL.Driver {
		case "mysql", "sqlite":
		default:
			return errors.Wrapf(ErrInvalidConfig, "unsupported store.sql.driver %q", c.Store.SQL.Driver)
		}

		if c.Store.SQL.DSN == "" {
			return errors.Wrap(ErrInvalidConfig, "store.sql.dsn is empty")
		}
	default:
		return errors.Wrapf(ErrInvalidBackend, "backend %q", c.Store.Backend)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.Wrap(ErrInvalidConfig, "cache.ttl must be positive")
	}

	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.Wrap(ErrInvalidConfig, "negative server timeout")
	}

	return nil
}

func (c *Config) expandPaths() (err error) {
	for _, p := range []*string{&c.Store.Badger.Dir, &c.Log.Dir, &c.Seed.File} {
		if *p, err = util.ExpandPath(strings.TrimSpace(*p)); err != nil {
			return err
		}
	}

	return nil
}
