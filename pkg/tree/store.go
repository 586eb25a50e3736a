package tree

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Store describes a storage contract for tree records
// NOTE: records are keyed by (entity, id); stores don't enforce any
// tree invariants, the forest does
type Store interface {
	Init(ctx context.Context) error
	FetchAll(ctx context.Context, e Entity) ([]Record, error)
	Create(ctx context.Context, r Record) error
	Update(ctx context.Context, r Record) error
	Delete(ctx context.Context, e Entity, id string) error
}

// errors
var (
	ErrRecordExists   = errors.New("record already exists")
	ErrRecordNotFound = errors.New("record not found")
)

var (
	_ Store = (*memoryStore)(nil)
	_ Store = (*BadgerStore)(nil)
	_ Store = (*SQLStore)(nil)
	_ Store = (*CachedStore)(nil)
)

// memoryStore is a default tree store implementation
type memoryStore struct {
	records map[Entity]map[string]Record
	sync.RWMutex
}

// NewMemoryStore returns an initialized tree store
// that stores everything in memory
func NewMemoryStore() Store {
	return &memoryStore{
		records: make(map[Entity]map[string]Record),
	}
}

func (s *memoryStore) Init(ctx context.Context) error {
	return nil
}

// FetchAll returns records ordered by seq
func (s *memoryStore) FetchAll(ctx context.Context, e Entity) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.RLock()
	rs := make([]Record, 0, len(s.records[e]))
	for _, r := range s.records[e] {
		rs = append(rs, r)
	}
	s.RUnlock()

	sortRecords(rs)

	return rs, nil
}

func (s *memoryStore) Create(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.ID == "" {
		return ErrZeroID
	}

	s.Lock()
	defer s.Unlock()

	byID, ok := s.records[r.Entity]
	if !ok {
		byID = make(map[string]Record)
		s.records[r.Entity] = byID
	}

	if _, ok := byID[r.ID]; ok {
		return errors.Wrapf(ErrRecordExists, "%s/%s", r.Entity, r.ID)
	}

	byID[r.ID] = r

	return nil
}

func (s *memoryStore) Update(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.records[r.Entity][r.ID]; !ok {
		return errors.Wrapf(ErrRecordNotFound, "%s/%s", r.Entity, r.ID)
	}

	s.records[r.Entity][r.ID] = r

	return nil
}

func (s *memoryStore) Delete(ctx context.Context, e Entity, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.records[e][id]; !ok {
		return errors.Wrapf(ErrRecordNotFound, "%s/%s", e, id)
	}

	delete(s.records[e], id)

	return nil
}

// sortRecords orders records by seq, then id
func sortRecords(rs []Record) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Seq != rs[j].Seq {
			return rs[i].Seq < rs[j].Seq
		}

		return rs[i].ID < rs[j].ID
	})
}
