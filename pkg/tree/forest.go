package tree

import (
	"sort"
	"strconv"
	"time"

	"github.com/agubarev/orgtree/pkg/util"
	"github.com/oklog/ulid"
	"github.com/pkg/errors"
)

// entry is a single arena slot
type entry struct {
	node     Node
	children []ulid.ULID
}

// Forest is an arena of nodes indexed by id, holding ordered child
// lists and the ordered list of roots
// NOTE: not safe for concurrent use, Manager serializes access
type Forest struct {
	entity Entity
	nodes  map[ulid.ULID]*entry
	roots  []ulid.ULID
	keys   map[string]ulid.ULID
	seq    uint64
	clock  func() time.Time
}

// NewForest initializes an empty forest for a given entity
func NewForest(e Entity) (*Forest, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	f := &Forest{
		entity: e,
		nodes:  make(map[ulid.ULID]*entry),
		roots:  make([]ulid.ULID, 0),
		keys:   make(map[string]ulid.ULID),
		clock:  func() time.Time { return time.Now().UTC() },
	}

	return f, nil
}

// Entity returns the entity this forest belongs to
func (f *Forest) Entity() Entity {
	return f.entity
}

// Len returns the total number of nodes
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Has tells whether a node exists
func (f *Forest) Has(id ulid.ULID) bool {
	_, ok := f.nodes[id]
	return ok
}

// Get returns a copy of a node
func (f *Forest) Get(id ulid.ULID) (Node, error) {
	e, ok := f.nodes[id]
	if !ok {
		return Node{}, errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}

	return e.node, nil
}

// Roots returns root nodes in sibling order
func (f *Forest) Roots() []Node {
	return f.collect(f.roots)
}

// Children returns direct children of a node in sibling order
func (f *Forest) Children(id ulid.ULID) ([]Node, error) {
	e, ok := f.nodes[id]
	if !ok {
		return nil, errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}

	return f.collect(e.children), nil
}

// Depth returns the number of ancestors of a node, 0 for roots
func (f *Forest) Depth(id ulid.ULID) (int, error) {
	e, ok := f.nodes[id]
	if !ok {
		return 0, errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}

	depth := 0
	for !e.node.IsRoot() {
		e = f.nodes[e.node.ParentID]
		depth++
	}

	return depth, nil
}

// Records returns flat records of every node in pre-order
func (f *Forest) Records() []Record {
	rs := make([]Record, 0, len(f.nodes))
	f.walk(func(e *entry, _ int) {
		rs = append(rs, e.node.Record(f.entity))
	})

	return rs
}

// Checksum returns a digest of the whole forest, equal for forests
// holding the same nodes in the same order
func (f *Forest) Checksum() uint64 {
	parts := make([]string, 0, len(f.nodes))
	f.walk(func(e *entry, depth int) {
		parts = append(parts, strconv.Itoa(depth)+":"+strconv.FormatUint(e.node.Checksum(), 16))
	})

	return util.HashStrings(parts...)
}

// Clone returns a deep copy of the forest
func (f *Forest) Clone() *Forest {
	c := &Forest{
		entity: f.entity,
		nodes:  make(map[ulid.ULID]*entry, len(f.nodes)),
		roots:  append(make([]ulid.ULID, 0, len(f.roots)), f.roots...),
		keys:   make(map[string]ulid.ULID, len(f.keys)),
		seq:    f.seq,
		clock:  f.clock,
	}

	for id, e := range f.nodes {
		c.nodes[id] = &entry{
			node:     e.node,
			children: append([]ulid.ULID(nil), e.children...),
		}
	}

	for k, id := range f.keys {
		c.keys[k] = id
	}

	return c
}

// Insert creates a new node under a given parent (zero id for a root)
func (f *Forest) Insert(parentID ulid.ULID, in NodeInput) (Node, error) {
	n, err := f.prepareInsert(parentID, in)
	if err != nil {
		return Node{}, err
	}

	f.commitInsert(n)

	return n, nil
}

// Update changes an existing node, moving it if the input names a new parent
func (f *Forest) Update(id ulid.ULID, in NodeInput) (Node, error) {
	n, err := f.prepareUpdate(id, in)
	if err != nil {
		return Node{}, err
	}

	f.commitUpdate(n)

	return n, nil
}

// Delete removes a childless node, a non-zero version must match
func (f *Forest) Delete(id ulid.ULID, version uint32) error {
	n, err := f.prepareDelete(id, version)
	if err != nil {
		return err
	}

	f.commitDelete(n)

	return nil
}

// SetStatus changes node status
func (f *Forest) SetStatus(id ulid.ULID, s Status) (Node, error) {
	n, err := f.prepareStatus(id, &s)
	if err != nil {
		return Node{}, err
	}

	f.commitUpdate(n)

	return n, nil
}

// ToggleStatus flips node status between active and inactive
func (f *Forest) ToggleStatus(id ulid.ULID) (Node, error) {
	n, err := f.prepareStatus(id, nil)
	if err != nil {
		return Node{}, err
	}

	f.commitUpdate(n)

	return n, nil
}

// SetVisible changes menu node visibility
func (f *Forest) SetVisible(id ulid.ULID, visible bool) (Node, error) {
	n, err := f.prepareVisible(id, &visible)
	if err != nil {
		return Node{}, err
	}

	f.commitUpdate(n)

	return n, nil
}

// ToggleVisible flips menu node visibility
func (f *Forest) ToggleVisible(id ulid.ULID) (Node, error) {
	n, err := f.prepareVisible(id, nil)
	if err != nil {
		return Node{}, err
	}

	f.commitUpdate(n)

	return n, nil
}

// Load admits stored records into the forest, returning an error
// for every record that could not be placed
// NOTE: a skipped record takes its whole subtree with it
func (f *Forest) Load(rs []Record) (skipped []error) {
	nodes := make(map[ulid.ULID]Node, len(rs))
	byParent := make(map[ulid.ULID][]ulid.ULID)
	order := make([]ulid.ULID, 0, len(rs))

	for _, r := range rs {
		if r.Entity != "" && r.Entity != f.entity {
			skipped = append(skipped, errors.Wrapf(ErrKindMismatch, "record %s belongs to %s", r.ID, r.Entity))
			continue
		}

		n, err := r.Node()
		if err != nil {
			skipped = append(skipped, errors.Wrapf(err, "record %s", r.ID))
			continue
		}

		if _, ok := nodes[n.ID]; ok || f.Has(n.ID) {
			skipped = append(skipped, errors.Wrapf(ErrDuplicateID, "record %s", r.ID))
			continue
		}

		nodes[n.ID] = n
		order = append(order, n.ID)
		byParent[n.ParentID] = append(byParent[n.ParentID], n.ID)
	}

	// placing level by level, parents always precede their children
	queue := make([]ulid.ULID, 0, len(order))
	for _, id := range order {
		if p := nodes[id].ParentID; util.IsZeroULID(p) || f.Has(p) {
			queue = append(queue, id)
		}
	}

	visited := make(map[ulid.ULID]bool, len(order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited[id] = true

		if err := f.admit(nodes[id]); err != nil {
			skipped = append(skipped, errors.Wrapf(err, "record %s", id))
			continue
		}

		queue = append(queue, byParent[id]...)
	}

	for _, id := range order {
		if !visited[id] {
			skipped = append(skipped, errors.Wrapf(ErrParentNotFound, "record %s is orphaned", id))
		}
	}

	return skipped
}

// admit places a stored node after structural checks
func (f *Forest) admit(n Node) error {
	if !f.entity.Accepts(n.Kind()) {
		return errors.Wrapf(ErrKindMismatch, "%s does not accept %s", f.entity, n.Kind())
	}

	if err := n.Status.Validate(); err != nil {
		return err
	}

	if err := n.Kind().checkParent(f.parentKind(n.ParentID)); err != nil {
		return err
	}

	if err := f.checkUniqueKey(n.Payload, n.ID); err != nil {
		return err
	}

	if n.Version == 0 {
		n.Version = 1
	}

	if n.Seq == 0 {
		n.Seq = f.seq + 1
	}

	if !f.entity.HasVisibility() {
		n.Visible = true
	}

	f.commitInsert(n)

	return nil
}

//? BEGIN ->>>----------------------------------------------------------------
//? unexported utility functions

func (f *Forest) prepareInsert(parentID ulid.ULID, in NodeInput) (Node, error) {
	in = in.sanitize()

	p, err := validateInput(f.entity, in)
	if err != nil {
		return Node{}, err
	}

	if !util.IsZeroULID(parentID) && !f.Has(parentID) {
		return Node{}, errors.Wrapf(ErrParentNotFound, "parent %s", parentID)
	}

	if err = p.Kind().checkParent(f.parentKind(parentID)); err != nil {
		return Node{}, err
	}

	if err = f.checkUniqueKey(p, ulid.ULID{}); err != nil {
		return Node{}, err
	}

	now := f.clock()

	n := Node{
		ID:        NewID(),
		ParentID:  parentID,
		Name:      in.Name,
		SortOrder: in.SortOrder,
		Status:    in.Status,
		Visible:   in.visibility(f.entity),
		Payload:   p,
		Remark:    in.Remark,
		Version:   1,
		Seq:       f.seq + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return n, nil
}

func (f *Forest) prepareUpdate(id ulid.ULID, in NodeInput) (Node, error) {
	e, ok := f.nodes[id]
	if !ok {
		return Node{}, errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}

	cur := e.node

	if err := checkVersion(cur, in.Version); err != nil {
		return Node{}, err
	}

	// an omitted status keeps the current one
	if in.Status == "" {
		in.Status = cur.Status
	}

	in = in.sanitize()

	p, err := validateInput(f.entity, in)
	if err != nil {
		return Node{}, err
	}

	parentID := cur.ParentID
	if in.ParentID != nil {
		if parentID, err = util.ParseULID(*in.ParentID); err != nil {
			return Node{}, errors.Wrapf(ErrInvalidID, "parent id %q", *in.ParentID)
		}
	}

	if !util.IsZeroULID(parentID) {
		if parentID == id {
			return Node{}, errors.Wrapf(ErrCircuitedParent, "node %s cannot be its own parent", id)
		}

		if !f.Has(parentID) {
			return Node{}, errors.Wrapf(ErrParentNotFound, "parent %s", parentID)
		}

		if parentID != cur.ParentID && f.isDescendant(parentID, id) {
			return Node{}, errors.Wrapf(ErrCircuitedParent, "parent %s is a descendant of %s", parentID, id)
		}
	}

	if err = p.Kind().checkParent(f.parentKind(parentID)); err != nil {
		return Node{}, err
	}

	if len(e.children) > 0 {
		if p.Kind().IsLeaf() {
			return Node{}, errors.Wrapf(ErrLeafWithChildren, "node %s has %d children", id, len(e.children))
		}

		for _, cid := range e.children {
			if err = f.nodes[cid].node.Kind().checkParent(p.Kind()); err != nil {
				return Node{}, errors.Wrapf(err, "child %s", cid)
			}
		}
	}

	if err = f.checkUniqueKey(p, id); err != nil {
		return Node{}, err
	}

	n := cur
	n.ParentID = parentID
	n.Name = in.Name
	n.SortOrder = in.SortOrder
	n.Status = in.Status
	n.Payload = p
	n.Remark = in.Remark

	if in.Visible != nil && f.entity.HasVisibility() {
		n.Visible = *in.Visible
	}

	return f.touch(n), nil
}

func (f *Forest) prepareDelete(id ulid.ULID, version uint32) (Node, error) {
	e, ok := f.nodes[id]
	if !ok {
		return Node{}, errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}

	if err := checkVersion(e.node, version); err != nil {
		return Node{}, err
	}

	if len(e.children) > 0 {
		return Node{}, errors.Wrapf(ErrHasChildren, "node %s has %d children", id, len(e.children))
	}

	if p, ok := e.node.Payload.(Post); ok && p.UserCount > 0 {
		return Node{}, errors.Wrapf(ErrHasUsers, "post %s has %d users", id, p.UserCount)
	}

	return e.node, nil
}

// prepareStatus sets a given status, nil toggles the current one
func (f *Forest) prepareStatus(id ulid.ULID, s *Status) (Node, error) {
	n, err := f.Get(id)
	if err != nil {
		return Node{}, err
	}

	next := n.Status.Toggle()
	if s != nil {
		if err = s.Validate(); err != nil {
			return Node{}, err
		}

		next = *s
	}

	n.Status = next

	return f.touch(n), nil
}

// prepareVisible sets a given visibility, nil toggles the current one
func (f *Forest) prepareVisible(id ulid.ULID, visible *bool) (Node, error) {
	if !f.entity.HasVisibility() {
		return Node{}, errors.Wrapf(ErrVisibilityUnsupported, "entity %s", f.entity)
	}

	n, err := f.Get(id)
	if err != nil {
		return Node{}, err
	}

	next := !n.Visible
	if visible != nil {
		next = *visible
	}

	n.Visible = next

	return f.touch(n), nil
}

func (f *Forest) touch(n Node) Node {
	n.Version++
	n.UpdatedAt = f.clock()

	return n
}

func (f *Forest) commitInsert(n Node) {
	f.nodes[n.ID] = &entry{node: n}
	f.link(n)

	if key, ok := uniqueKey(n.Payload); ok {
		f.keys[key] = n.ID
	}

	if n.Seq > f.seq {
		f.seq = n.Seq
	}
}

func (f *Forest) commitUpdate(n Node) {
	e := f.nodes[n.ID]
	old := e.node

	if key, ok := uniqueKey(old.Payload); ok {
		delete(f.keys, key)
	}

	if old.ParentID != n.ParentID || old.SortOrder != n.SortOrder {
		f.unlink(old)
		e.node = n
		f.link(n)
	} else {
		e.node = n
	}

	if key, ok := uniqueKey(n.Payload); ok {
		f.keys[key] = n.ID
	}
}

func (f *Forest) commitDelete(n Node) {
	f.unlink(n)
	delete(f.nodes, n.ID)

	if key, ok := uniqueKey(n.Payload); ok && f.keys[key] == n.ID {
		delete(f.keys, key)
	}
}

// siblings returns the child list a node with a given parent belongs to
func (f *Forest) siblings(parentID ulid.ULID) *[]ulid.ULID {
	if util.IsZeroULID(parentID) {
		return &f.roots
	}

	return &f.nodes[parentID].children
}

// link places a node among its siblings by (sort order, seq)
func (f *Forest) link(n Node) {
	list := f.siblings(n.ParentID)

	pos := sort.Search(len(*list), func(i int) bool {
		return before(n, f.nodes[(*list)[i]].node)
	})

	*list = append(*list, ulid.ULID{})
	copy((*list)[pos+1:], (*list)[pos:])
	(*list)[pos] = n.ID
}

func (f *Forest) unlink(n Node) {
	list := f.siblings(n.ParentID)

	for i, id := range *list {
		if id == n.ID {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

// before reports whether a sorts ahead of b among siblings
func before(a, b Node) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}

	return a.Seq < b.Seq
}

func (f *Forest) parentKind(parentID ulid.ULID) Kind {
	if e, ok := f.nodes[parentID]; ok {
		return e.node.Kind()
	}

	return KNone
}

// isDescendant tells whether id lies inside the subtree of ancestorID
func (f *Forest) isDescendant(id, ancestorID ulid.ULID) bool {
	for e, ok := f.nodes[id]; ok; e, ok = f.nodes[e.node.ParentID] {
		if e.node.ParentID == ancestorID {
			return true
		}
	}

	return false
}

func (f *Forest) checkUniqueKey(p Payload, self ulid.ULID) error {
	key, ok := uniqueKey(p)
	if !ok {
		return nil
	}

	if owner, taken := f.keys[key]; taken && owner != self {
		return errors.Wrapf(ErrDuplicateKey, "%s %q is already taken", p.Kind(), key)
	}

	return nil
}

func checkVersion(n Node, expected uint32) error {
	if expected != 0 && expected != n.Version {
		return errors.Wrapf(ErrVersionConflict, "node %s: expected version %d, current %d", n.ID, expected, n.Version)
	}

	return nil
}

func (f *Forest) collect(ids []ulid.ULID) []Node {
	ns := make([]Node, 0, len(ids))
	for _, id := range ids {
		ns = append(ns, f.nodes[id].node)
	}

	return ns
}

// walk visits every node in pre-order with its depth
func (f *Forest) walk(fn func(e *entry, depth int)) {
	type frame struct {
		id    ulid.ULID
		depth int
	}

	stack := make([]frame, 0, len(f.roots))
	for i := len(f.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{f.roots[i], 0})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e := f.nodes[top.id]
		fn(e, top.depth)

		for i := len(e.children) - 1; i >= 0; i-- {
			stack = append(stack, frame{e.children[i], top.depth + 1})
		}
	}
}

//? unexported utility functions
//? END ---<<<----------------------------------------------------------------
