package core

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/agubarev/orgtree/internal/config"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Core holds one tree manager per entity, all sharing a single record store
type Core struct {
	managers map[tree.Entity]*tree.Manager
	store    tree.Store
	closers  []io.Closer
	logger   *zap.Logger
	closed   bool
	sync.RWMutex
}

// New opens the configured store and returns an uninitialized core
func New(c config.Config, logger *zap.Logger) (*Core, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		return nil, ErrNilLogger
	}

	s, closers, err := OpenStore(c, logger)
	if err != nil {
		return nil, err
	}

	core, err := NewWithStore(s)
	if err != nil {
		for _, cl := range closers {
			cl.Close()
		}

		return nil, err
	}

	core.closers = closers

	if err = core.SetLogger(logger); err != nil {
		core.Close()
		return nil, err
	}

	return core, nil
}

// NewWithStore returns a core with a manager for every known entity
// backed by a given store
func NewWithStore(s tree.Store) (*Core, error) {
	if s == nil {
		return nil, tree.ErrNilStore
	}

	c := &Core{
		managers: make(map[tree.Entity]*tree.Manager, len(tree.Entities())),
		store:    s,
	}

	for _, e := range tree.Entities() {
		m, err := tree.NewManager(e, s)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create %s manager", e)
		}

		c.managers[e] = m
	}

	return c, nil
}

// Init initializes the store and loads every forest
func (c *Core) Init(ctx context.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}

	l := c.Logger()
	l.Info("initializing the core")

	if err := c.store.Init(ctx); err != nil {
		return errors.Wrap(err, "failed to initialize record store")
	}

	for _, e := range tree.Entities() {
		l.Info("initializing tree manager", zap.String("entity", string(e)))

		if err := c.managers[e].Init(ctx); err != nil {
			return errors.Wrapf(err, "failed to initialize %s manager", e)
		}
	}

	return nil
}

// Seed populates every empty forest, either from a given fixtures file
// or from the built-in fixtures when the path is empty
func (c *Core) Seed(ctx context.Context, path string) (created int, err error) {
	if err = c.Validate(); err != nil {
		return 0, err
	}

	var fixtures []tree.Fixture

	if path != "" {
		if fixtures, err = tree.ReadFixtures(path); err != nil {
			return 0, err
		}
	} else {
		for _, e := range tree.Entities() {
			fx, err := tree.DefaultFixture(e)
			if err != nil {
				return 0, err
			}

			fixtures = append(fixtures, fx)
		}
	}

	for _, fx := range fixtures {
		m, err := c.Manager(fx.Entity)
		if err != nil {
			return created, err
		}

		n, err := tree.Seed(ctx, m, fx)
		created += n
		if err != nil {
			return created, errors.Wrapf(err, "failed to seed %s", fx.Entity)
		}
	}

	return created, nil
}

// Manager returns the tree manager of a given entity
func (c *Core) Manager(e tree.Entity) (*tree.Manager, error) {
	if c == nil {
		return nil, ErrNilCore
	}

	c.RLock()
	defer c.RUnlock()

	if c.closed {
		return nil, ErrAlreadyClosed
	}

	m, ok := c.managers[e]
	if !ok {
		return nil, errors.Wrapf(ErrManagerNotFound, "entity %q", e)
	}

	return m, nil
}

// Store returns the underlying record store
func (c *Core) Store() (tree.Store, error) {
	if c == nil {
		return nil, ErrNilCore
	}

	if c.store == nil {
		return nil, tree.ErrNilStore
	}

	return c.store, nil
}

// Validate validates the core
func (c *Core) Validate() error {
	if c == nil {
		return ErrNilCore
	}

	if c.store == nil {
		return tree.ErrNilStore
	}

	for _, e := range tree.Entities() {
		m, ok := c.managers[e]
		if !ok {
			return errors.Wrapf(ErrManagerNotFound, "entity %q", e)
		}

		if err := m.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Close releases the underlying store resources
func (c *Core) Close() (err error) {
	if c == nil {
		return ErrNilCore
	}

	c.Lock()
	defer c.Unlock()

	if c.closed {
		return ErrAlreadyClosed
	}

	c.closed = true

	for _, cl := range c.closers {
		err = multierr.Append(err, cl.Close())
	}

	return err
}

// SetLogger setting a primary logger for the core and its managers
func (c *Core) SetLogger(logger *zap.Logger) error {
	if logger == nil {
		return ErrNilLogger
	}

	c.logger = logger.Named("[orgtree]")

	for _, m := range c.managers {
		if err := m.SetLogger(logger); err != nil {
			return err
		}
	}

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
// a new default emergency logger
// NOTE: will panic if it finally fails to obtain a logger
func (c *Core) Logger() *zap.Logger {
	if c.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			// having a working logger is crucial, thus must panic() if initialization fails
			panic(fmt.Errorf("failed to initialize core logger: %s", err))
		}

		c.logger = l
	}

	return c.logger
}
