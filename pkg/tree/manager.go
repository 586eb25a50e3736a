package tree

import (
	"context"
	"fmt"
	"sync"

	"github.com/agubarev/orgtree/pkg/util"
	"github.com/oklog/ulid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Repository is the contract through which hierarchical entities are
// listed and mutated, in-process or over the network
type Repository interface {
	List(ctx context.Context) (*Forest, error)
	Insert(ctx context.Context, parentID ulid.ULID, in NodeInput) (Node, error)
	Update(ctx context.Context, id ulid.ULID, in NodeInput) (Node, error)
	Delete(ctx context.Context, id ulid.ULID) error
}

var _ Repository = (*Manager)(nil)

// fields an update is allowed to change
var updatableFields = map[string]bool{
	"parent_id":  true,
	"kind":       true,
	"name":       true,
	"sort_order": true,
	"status":     true,
	"visible":    true,
	"remark":     true,
	"path":       true,
	"component":  true,
	"icon":       true,
	"permission": true,
	"leader":     true,
	"phone":      true,
	"email":      true,
	"type":       true,
	"value":      true,
	"is_default": true,
	"css_class":  true,
	"code":       true,
	"user_count": true,
	"version":    true,
	"updated_at": true,
}

// audit is a diffable snapshot of a node
type audit struct {
	ID        string `diff:"id"`
	ParentID  string `diff:"parent_id"`
	Kind      string `diff:"kind"`
	Name      string `diff:"name"`
	SortOrder int    `diff:"sort_order"`
	Status    string `diff:"status"`
	Visible   bool   `diff:"visible"`
	Remark    string `diff:"remark"`
	Path      string `diff:"path"`
	Component string `diff:"component"`
	Icon      string `diff:"icon"`
	Perm      string `diff:"permission"`
	Leader    string `diff:"leader"`
	Phone     string `diff:"phone"`
	Email     string `diff:"email"`
	Type      string `diff:"type"`
	Value     string `diff:"value"`
	IsDefault bool   `diff:"is_default"`
	CSSClass  string `diff:"css_class"`
	Code      string `diff:"code"`
	UserCount int    `diff:"user_count"`
	Version   uint32 `diff:"version"`
	Seq       uint64 `diff:"seq"`
	CreatedAt int64  `diff:"created_at"`
	UpdatedAt int64  `diff:"updated_at"`
}

func auditOf(n Node) audit {
	a := AttributesOf(n.Payload)

	return audit{
		ID:        n.ID.String(),
		ParentID:  parentString(n.ParentID),
		Kind:      n.Kind().String(),
		Name:      n.Name,
		SortOrder: n.SortOrder,
		Status:    string(n.Status),
		Visible:   n.Visible,
		Remark:    n.Remark,
		Path:      a.Path,
		Component: a.Component,
		Icon:      a.Icon,
		Perm:      a.Permission,
		Leader:    a.Leader,
		Phone:     a.Phone,
		Email:     a.Email,
		Type:      a.Type,
		Value:     a.Value,
		IsDefault: a.IsDefault,
		CSSClass:  a.CSSClass,
		Code:      a.Code,
		UserCount: a.UserCount,
		Version:   n.Version,
		Seq:       n.Seq,
		CreatedAt: n.CreatedAt.UnixNano(),
		UpdatedAt: n.UpdatedAt.UnixNano(),
	}
}

// Manager owns the forest of a single entity and keeps it in sync
// with the store
// NOTE: every mutation validates against the forest, persists the
// result and only then commits it to the forest, all under the write lock
type Manager struct {
	entity Entity
	forest *Forest
	store  Store
	logger *zap.Logger
	sync.RWMutex
}

// NewManager initializing a new tree manager
func NewManager(e Entity, s Store) (*Manager, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	f, err := NewForest(e)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		entity: e,
		forest: f,
		store:  s,
	}

	return m, nil
}

// SetLogger assigns a logger for this manager
func (m *Manager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named(fmt.Sprintf("[tree:%s]", m.entity))
	}

	m.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (m *Manager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize tree manager logger: %s", err))
		}

		m.logger = l.Named(fmt.Sprintf("[tree:%s]", m.entity))
	}

	return m.logger
}

// Entity returns the entity managed by this manager
func (m *Manager) Entity() Entity {
	return m.entity
}

// Store returns store if set
func (m *Manager) Store() (Store, error) {
	if m.store == nil {
		return nil, ErrNilStore
	}

	return m.store, nil
}

// Validate this tree manager
func (m *Manager) Validate() error {
	if m == nil {
		return ErrNilManager
	}

	if m.forest == nil {
		return ErrNilForest
	}

	if m.store == nil {
		return ErrNilStore
	}

	return m.entity.Validate()
}

// Init (re)loads the forest from the store
// NOTE: records that can't be placed are logged and skipped
func (m *Manager) Init(ctx context.Context) error {
	if err := m.Validate(); err != nil {
		return err
	}

	l := m.Logger()

	rs, err := m.store.FetchAll(ctx, m.entity)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch %s records", m.entity)
	}

	f, err := NewForest(m.entity)
	if err != nil {
		return err
	}

	for _, err := range f.Load(rs) {
		// just warning and moving forward
		l.Warn("failed to load record into the forest", zap.Error(err))
	}

	m.Lock()
	m.forest = f
	m.Unlock()

	l.Info("forest loaded", zap.Int("records", len(rs)), zap.Int("nodes", f.Len()))

	return nil
}

// List returns a snapshot of the forest
func (m *Manager) List(ctx context.Context) (*Forest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.RLock()
	f := m.forest.Clone()
	m.RUnlock()

	return f, nil
}

// Get returns a single node
func (m *Manager) Get(ctx context.Context, id ulid.ULID) (Node, error) {
	if err := ctx.Err(); err != nil {
		return Node{}, err
	}

	m.RLock()
	n, err := m.forest.Get(id)
	m.RUnlock()

	return n, err
}

// Len returns the number of nodes
func (m *Manager) Len() int {
	m.RLock()
	defer m.RUnlock()

	return m.forest.Len()
}

// Insert creates a new node under a given parent (zero id for a root)
func (m *Manager) Insert(ctx context.Context, parentID ulid.ULID, in NodeInput) (Node, error) {
	m.Lock()
	defer m.Unlock()

	n, err := m.forest.prepareInsert(parentID, in)
	if err != nil {
		return Node{}, err
	}

	if err = m.store.Create(ctx, n.Record(m.entity)); err != nil {
		return Node{}, errors.Wrapf(err, "failed to store %s %s", n.Kind(), n.ID)
	}

	m.forest.commitInsert(n)

	m.Logger().Debug(
		"node created",
		zap.String("id", n.ID.String()),
		zap.String("parent_id", parentString(n.ParentID)),
		zap.String("kind", n.Kind().String()),
		zap.String("name", n.Name),
	)

	return n, nil
}

// Update changes an existing node
func (m *Manager) Update(ctx context.Context, id ulid.ULID, in NodeInput) (Node, error) {
	m.Lock()
	defer m.Unlock()

	return m.persistUpdate(ctx, id, func() (Node, error) {
		return m.forest.prepareUpdate(id, in)
	})
}

// Delete removes a childless node
func (m *Manager) Delete(ctx context.Context, id ulid.ULID) error {
	return m.DeleteVersion(ctx, id, 0)
}

// DeleteVersion removes a childless node, a non-zero version must
// match the current one
func (m *Manager) DeleteVersion(ctx context.Context, id ulid.ULID, version uint32) error {
	m.Lock()
	defer m.Unlock()

	n, err := m.forest.prepareDelete(id, version)
	if err != nil {
		return err
	}

	if err = m.store.Delete(ctx, m.entity, n.ID.String()); err != nil {
		return errors.Wrapf(err, "failed to delete %s %s", n.Kind(), n.ID)
	}

	m.forest.commitDelete(n)

	m.Logger().Debug("node deleted", zap.String("id", id.String()), zap.String("name", n.Name))

	return nil
}

// SetStatus changes node status
func (m *Manager) SetStatus(ctx context.Context, id ulid.ULID, s Status) (Node, error) {
	m.Lock()
	defer m.Unlock()

	return m.persistUpdate(ctx, id, func() (Node, error) {
		return m.forest.prepareStatus(id, &s)
	})
}

// ToggleStatus flips node status
// NOTE: never blocked by usage, a post in use can still be disabled
func (m *Manager) ToggleStatus(ctx context.Context, id ulid.ULID) (Node, error) {
	m.Lock()
	defer m.Unlock()

	return m.persistUpdate(ctx, id, func() (Node, error) {
		return m.forest.prepareStatus(id, nil)
	})
}

// SetVisible changes menu node visibility
func (m *Manager) SetVisible(ctx context.Context, id ulid.ULID, visible bool) (Node, error) {
	m.Lock()
	defer m.Unlock()

	return m.persistUpdate(ctx, id, func() (Node, error) {
		return m.forest.prepareVisible(id, &visible)
	})
}

// ToggleVisible flips menu node visibility
func (m *Manager) ToggleVisible(ctx context.Context, id ulid.ULID) (Node, error) {
	m.Lock()
	defer m.Unlock()

	return m.persistUpdate(ctx, id, func() (Node, error) {
		return m.forest.prepareVisible(id, nil)
	})
}

// persistUpdate stores a prepared change and commits it to the forest
// NOTE: must be called under the write lock
func (m *Manager) persistUpdate(ctx context.Context, id ulid.ULID, prepare func() (Node, error)) (Node, error) {
	before, err := m.forest.Get(id)
	if err != nil {
		return Node{}, err
	}

	after, err := prepare()
	if err != nil {
		return Node{}, err
	}

	changelog, err := util.ProtectedChangelog(updatableFields, auditOf(before), auditOf(after))
	if err != nil {
		return Node{}, errors.Wrapf(err, "node %s", id)
	}

	if err = m.store.Update(ctx, after.Record(m.entity)); err != nil {
		return Node{}, errors.Wrapf(err, "failed to update %s %s", after.Kind(), after.ID)
	}

	m.forest.commitUpdate(after)

	m.Logger().Debug(
		"node updated",
		zap.String("id", id.String()),
		zap.Uint32("version", after.Version),
		zap.Strings("changed", util.ChangedFields(changelog)),
	)

	return after, nil
}
