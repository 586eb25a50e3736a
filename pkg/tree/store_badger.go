package tree

import (
	"context"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// BadgerStore keeps records in an embedded badger database,
// one key per record: "tree/<entity>/<id>"
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore returns a tree store with badger used as a backend
func NewBadgerStore(db *badger.DB) (*BadgerStore, error) {
	if db == nil {
		return nil, errors.New("badger database is nil")
	}

	return &BadgerStore{db}, nil
}

// OpenBadger opens (or creates) a badger database in a given directory
func OpenBadger(dir string, logger *zap.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	if logger != nil {
		opts.Logger = badgerLogger{logger.Named("[badger]").Sugar()}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger database at %s", dir)
	}

	return db, nil
}

//? BEGIN ->>>----------------------------------------------------------------
//? unexported utility functions

func entityPrefix(e Entity) []byte {
	return []byte("tree/" + string(e) + "/")
}

func recordKey(e Entity, id string) []byte {
	return append(entityPrefix(e), id...)
}

func (s *BadgerStore) put(ctx context.Context, r Record, mustExist bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.ID == "" {
		return ErrZeroID
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to encode record")
	}

	key := recordKey(r.Entity, r.ID)

	return s.db.Update(func(tx *badger.Txn) error {
		_, err := tx.Get(key)
		switch {
		case err == badger.ErrKeyNotFound && mustExist:
			return errors.Wrapf(ErrRecordNotFound, "%s", key)
		case err == nil && !mustExist:
			return errors.Wrapf(ErrRecordExists, "%s", key)
		case err != nil && err != badger.ErrKeyNotFound:
			return errors.Wrapf(err, "failed to check record %s", key)
		}

		if err = tx.Set(key, payload); err != nil {
			return errors.Wrapf(err, "failed to store record %s", key)
		}

		return nil
	})
}

//? unexported utility functions
//? END ---<<<----------------------------------------------------------------

func (s *BadgerStore) Init(ctx context.Context) error {
	return nil
}

// FetchAll returns records ordered by seq
func (s *BadgerStore) FetchAll(ctx context.Context, e Entity) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs := make([]Record, 0)
	prefix := entityPrefix(e)

	err := s.db.View(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(payload []byte) error {
				var r Record
				if err := json.Unmarshal(payload, &r); err != nil {
					return errors.Wrapf(err, "failed to decode record %s", it.Item().Key())
				}

				rs = append(rs, r)

				return nil
			})

			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sortRecords(rs)

	return rs, nil
}

func (s *BadgerStore) Create(ctx context.Context, r Record) error {
	return s.put(ctx, r, false)
}

func (s *BadgerStore) Update(ctx context.Context, r Record) error {
	return s.put(ctx, r, true)
}

func (s *BadgerStore) Delete(ctx context.Context, e Entity, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := recordKey(e, id)

	return s.db.Update(func(tx *badger.Txn) error {
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.Wrapf(ErrRecordNotFound, "%s", key)
			}

			return err
		}

		if err := tx.Delete(key); err != nil {
			return errors.Wrapf(err, "failed to delete record %s", key)
		}

		return nil
	})
}

// badgerLogger routes badger's own logging through zap
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
