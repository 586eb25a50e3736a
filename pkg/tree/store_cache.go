package tree

import (
	"context"
	"sync"
	"time"

	"github.com/allegro/bigcache"
	"github.com/pkg/errors"
)

// CachedStore is a read-through cache in front of another store,
// caching whole entity listings and dropping them on every write
type CachedStore struct {
	backend Store
	cache   *bigcache.BigCache
	closer  sync.Once
}

// NewCachedStore wraps a given store with a bigcache-backed cache
func NewCachedStore(backend Store, ttl time.Duration) (*CachedStore, error) {
	if backend == nil {
		return nil, ErrNilStore
	}

	config := bigcache.DefaultConfig(ttl)
	config.Shards = 16
	config.MaxEntriesInWindow = 1024
	config.Verbose = false

	cache, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize record cache")
	}

	return &CachedStore{backend: backend, cache: cache}, nil
}

func (s *CachedStore) Init(ctx context.Context) error {
	return s.backend.Init(ctx)
}

// FetchAll returns cached records if present, otherwise reading
// through to the backend
func (s *CachedStore) FetchAll(ctx context.Context, e Entity) ([]Record, error) {
	if payload, err := s.cache.Get(string(e)); err == nil {
		var rs []Record
		if err = json.Unmarshal(payload, &rs); err == nil {
			return rs, nil
		}
	}

	rs, err := s.backend.FetchAll(ctx, e)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode records for caching")
	}

	if err = s.cache.Set(string(e), payload); err != nil {
		return nil, errors.Wrapf(err, "failed to cache %s records", e)
	}

	return rs, nil
}

func (s *CachedStore) Create(ctx context.Context, r Record) error {
	defer s.invalidate(r.Entity)
	return s.backend.Create(ctx, r)
}

func (s *CachedStore) Update(ctx context.Context, r Record) error {
	defer s.invalidate(r.Entity)
	return s.backend.Update(ctx, r)
}

func (s *CachedStore) Delete(ctx context.Context, e Entity, id string) error {
	defer s.invalidate(e)
	return s.backend.Delete(ctx, e, id)
}

// Close stops the cache cleanup, the backend is left open
func (s *CachedStore) Close() (err error) {
	s.closer.Do(func() {
		err = s.cache.Close()
	})

	return err
}

func (s *CachedStore) invalidate(e Entity) {
	// a missing entry is not an error worth reporting
	_ = s.cache.Delete(string(e))
}
