package core

import (
	"io"
	"os"

	"github.com/agubarev/orgtree/internal/config"
	"github.com/agubarev/orgtree/pkg/database"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/agubarev/orgtree/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// OpenStore opens the record store selected by the configuration,
// returning it along with whatever must be closed at shutdown
func OpenStore(c config.Config, logger *zap.Logger) (s tree.Store, closers []io.Closer, err error) {
	if logger == nil {
		return nil, nil, ErrNilLogger
	}

	switch c.Store.Backend {
	case config.BackendMemory:
		s = tree.NewMemoryStore()
	case config.BackendBadger:
		if err = util.CreateDirectoryIfNotExists(c.Store.Badger.Dir, os.FileMode(0700)); err != nil {
			return nil, nil, err
		}

		db, err := tree.OpenBadger(c.Store.Badger.Dir, logger)
		if err != nil {
			return nil, nil, err
		}

		closers = append(closers, db)

		if s, err = tree.NewBadgerStore(db); err != nil {
			db.Close()
			return nil, nil, err
		}
	case config.BackendSQL:
		conn, err := database.Open(c.Store.SQL.Driver, c.Store.SQL.DSN)
		if err != nil {
			return nil, nil, err
		}

		closers = append(closers, conn)

		if s, err = tree.NewSQLStore(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
	default:
		return nil, nil, errors.Wrapf(config.ErrInvalidBackend, "backend %q", c.Store.Backend)
	}

	if c.Cache.Enabled {
		cached, err := tree.NewCachedStore(s, c.Cache.TTL)
		if err != nil {
			for _, cl := range closers {
				cl.Close()
			}

			return nil, nil, err
		}

		closers = append(closers, cached)
		s = cached
	}

	logger.Info(
		"record store opened",
		zap.String("backend", c.Store.Backend),
		zap.Bool("cache", c.Cache.Enabled),
	)

	return s, closers, nil
}
