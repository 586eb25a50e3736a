package tree_test

import (
	"context"
	"sync"
	"testing"

	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/oklog/ulid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store is down")

// flakyStore fails every write while down
type flakyStore struct {
	tree.Store
	down bool
}

func (s *flakyStore) Create(ctx context.Context, r tree.Record) error {
	if s.down {
		return errStoreDown
	}

	return s.Store.Create(ctx, r)
}

func (s *flakyStore) Update(ctx context.Context, r tree.Record) error {
	if s.down {
		return errStoreDown
	}

	return s.Store.Update(ctx, r)
}

func (s *flakyStore) Delete(ctx context.Context, e tree.Entity, id string) error {
	if s.down {
		return errStoreDown
	}

	return s.Store.Delete(ctx, e, id)
}

func seededManager(t *testing.T, e tree.Entity, s tree.Store) *tree.Manager {
	m, err := tree.NewManager(e, s)
	require.NoError(t, err)
	require.NoError(t, m.SetLogger(zap.NewNop()))
	require.NoError(t, m.Init(context.Background()))

	fx, err := tree.DefaultFixture(e)
	require.NoError(t, err)

	_, err = tree.Seed(context.Background(), m, fx)
	require.NoError(t, err)

	return m
}

func TestNewManager(t *testing.T) {
	a := assert.New(t)

	_, err := tree.NewManager(tree.EntityMenu, nil)
	a.Equal(tree.ErrNilStore, err)

	_, err = tree.NewManager("user", tree.NewMemoryStore())
	a.Equal(tree.ErrUnknownEntity, errors.Cause(err))

	m, err := tree.NewManager(tree.EntityMenu, tree.NewMemoryStore())
	a.NoError(err)
	a.NoError(m.Validate())
	a.Equal(tree.EntityMenu, m.Entity())
	a.NotNil(m.Logger())

	s, err := m.Store()
	a.NoError(err)
	a.NotNil(s)
}

func TestManagerSeedAndReload(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	s := tree.NewMemoryStore()
	m := seededManager(t, tree.EntityDept, s)
	a.Equal(5, m.Len())

	// seeding a non-empty forest does nothing
	fx, err := tree.DefaultFixture(tree.EntityDept)
	a.NoError(err)

	n, err := tree.Seed(ctx, m, fx)
	a.NoError(err)
	a.Equal(0, n)

	// a wrong fixture is refused
	menus, err := tree.DefaultFixture(tree.EntityMenu)
	a.NoError(err)

	_, err = tree.Seed(ctx, m, menus)
	a.Error(err)

	f, err := m.List(ctx)
	a.NoError(err)

	// another manager over the same store sees the same forest
	other, err := tree.NewManager(tree.EntityDept, s)
	a.NoError(err)
	a.NoError(other.SetLogger(zap.NewNop()))
	a.NoError(other.Init(ctx))

	reloaded, err := other.List(ctx)
	a.NoError(err)
	a.Equal(f.Checksum(), reloaded.Checksum())
	a.Equal(f.Flatten(), reloaded.Flatten())
}

func TestManagerMutations(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	m := seededManager(t, tree.EntityDept, tree.NewMemoryStore())

	f, err := m.List(ctx)
	a.NoError(err)
	ids := idsByName(f)

	qa, err := m.Insert(ctx, ids["技术部"], dept("QA", 3))
	a.NoError(err)

	got, err := m.Get(ctx, qa.ID)
	a.NoError(err)
	a.Equal(qa, got)

	// the listed forest is a snapshot
	a.False(f.Has(qa.ID))

	in := tree.InputOf(qa)
	in.Name = "测试组"
	updated, err := m.Update(ctx, qa.ID, in)
	a.NoError(err)
	a.Equal(uint32(2), updated.Version)

	_, err = m.Update(ctx, qa.ID, in)
	a.True(tree.IsConflict(err))

	_, err = m.Update(ctx, ids["技术部"], tree.InputOf(mustGet(t, m, ids["技术部"])).WithParent(qa.ID.String()))
	a.Equal(tree.ErrCircuitedParent, errors.Cause(err))

	toggled, err := m.ToggleStatus(ctx, qa.ID)
	a.NoError(err)
	a.Equal(tree.StatusInactive, toggled.Status)

	toggled, err = m.SetStatus(ctx, qa.ID, tree.StatusActive)
	a.NoError(err)
	a.Equal(tree.StatusActive, toggled.Status)

	_, err = m.ToggleVisible(ctx, qa.ID)
	a.Equal(tree.ErrVisibilityUnsupported, errors.Cause(err))

	_, err = m.SetVisible(ctx, qa.ID, false)
	a.Equal(tree.ErrVisibilityUnsupported, errors.Cause(err))

	a.True(tree.IsPrecondition(m.Delete(ctx, ids["技术部"])))
	a.True(tree.IsConflict(m.DeleteVersion(ctx, qa.ID, 1)))
	a.NoError(m.DeleteVersion(ctx, qa.ID, toggled.Version))
	a.True(tree.IsNotFound(m.Delete(ctx, qa.ID)))

	// the store followed every change
	other, err := tree.NewManager(tree.EntityDept, mustStore(t, m))
	a.NoError(err)
	a.NoError(other.SetLogger(zap.NewNop()))
	a.NoError(other.Init(ctx))
	a.Equal(5, other.Len())
}

func TestManagerStoreFailure(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	s := &flakyStore{Store: tree.NewMemoryStore()}
	m := seededManager(t, tree.EntityMenu, s)

	before, err := m.List(ctx)
	a.NoError(err)
	ids := idsByName(before)

	s.down = true

	_, err = m.Insert(ctx, ulid.ULID{}, directory("系统运维", "/ops", 4))
	a.Equal(errStoreDown, errors.Cause(err))
	a.Equal(tree.FaultInternal, tree.FaultOf(err))

	_, err = m.ToggleVisible(ctx, ids["日志管理"])
	a.Equal(errStoreDown, errors.Cause(err))

	a.Equal(errStoreDown, errors.Cause(m.Delete(ctx, ids["日志管理"])))

	after, err := m.List(ctx)
	a.NoError(err)
	a.Equal(before.Checksum(), after.Checksum())
	a.Equal(before.Flatten(), after.Flatten())

	s.down = false

	n, err := m.ToggleVisible(ctx, ids["日志管理"])
	a.NoError(err)
	a.False(n.Visible)
	a.Equal(uint32(2), n.Version)
}

func TestManagerConcurrentInserts(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	m, err := tree.NewManager(tree.EntityDept, tree.NewMemoryStore())
	a.NoError(err)
	a.NoError(m.SetLogger(zap.NewNop()))

	root, err := m.Insert(ctx, ulid.ULID{}, dept("总公司", 0))
	a.NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, err := m.Insert(ctx, root.ID, dept("分部", i%4))
			a.NoError(err)

			_, err = m.List(ctx)
			a.NoError(err)
		}(i)
	}

	wg.Wait()

	f, err := m.List(ctx)
	a.NoError(err)
	a.Equal(17, f.Len())

	children, err := f.Children(root.ID)
	a.NoError(err)
	a.Len(children, 16)

	for i := 1; i < len(children); i++ {
		prev, cur := children[i-1], children[i]
		a.True(prev.SortOrder < cur.SortOrder || (prev.SortOrder == cur.SortOrder && prev.Seq < cur.Seq))
	}
}

func mustGet(t *testing.T, m *tree.Manager, id ulid.ULID) tree.Node {
	n, err := m.Get(context.Background(), id)
	require.NoError(t, err)

	return n
}

func mustStore(t *testing.T, m *tree.Manager) tree.Store {
	s, err := m.Store()
	require.NoError(t, err)

	return s
}
