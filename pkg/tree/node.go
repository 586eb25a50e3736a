package tree

import (
	"strconv"
	"time"

	"github.com/agubarev/orgtree/pkg/util"
	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// name and sort constraints
const (
	MaxNameLength = 50
	MinSortOrder  = 0
	MaxSortOrder  = 9999
)

// NewID generates a new node id
func NewID() ulid.ULID {
	return util.NewULID()
}

// Node is a single tree entity
// NOTE: nodes are always handed out as copies, the forest owns the originals
type Node struct {
	ID        ulid.ULID
	ParentID  ulid.ULID
	Name      string
	SortOrder int
	Status    Status
	Visible   bool
	Payload   Payload
	Remark    string
	Version   uint32
	Seq       uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Kind returns the kind of the node's payload
func (n Node) Kind() Kind {
	if n.Payload == nil {
		return KNone
	}

	return n.Payload.Kind()
}

// IsRoot tells whether the node has no parent
func (n Node) IsRoot() bool {
	return util.IsZeroULID(n.ParentID)
}

// Checksum returns a digest of the node's mutable content,
// it changes whenever an update changes anything visible
func (n Node) Checksum() uint64 {
	a := AttributesOf(n.Payload)

	return util.HashStrings(
		n.ID.String(),
		parentString(n.ParentID),
		n.Kind().String(),
		n.Name,
		strconv.Itoa(n.SortOrder),
		string(n.Status),
		strconv.FormatBool(n.Visible),
		n.Remark,
		a.Path,
		a.Component,
		a.Icon,
		a.Permission,
		a.Leader,
		a.Phone,
		a.Email,
		a.Type,
		a.Value,
		strconv.FormatBool(a.IsDefault),
		a.CSSClass,
		a.Code,
		strconv.Itoa(a.UserCount),
	)
}

// Record returns a flat representation of the node
func (n Node) Record(e Entity) Record {
	return Record{
		Entity:     e,
		ID:         n.ID.String(),
		ParentID:   parentString(n.ParentID),
		Kind:       n.Kind(),
		Name:       n.Name,
		SortOrder:  n.SortOrder,
		Status:     n.Status,
		Visible:    n.Visible,
		Remark:     n.Remark,
		Attributes: AttributesOf(n.Payload),
		Version:    n.Version,
		Seq:        n.Seq,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

// MarshalJSON renders the node as its record
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Record(""))
}

// Record is a flat, storable form of a node
type Record struct {
	Entity    Entity `json:"entity,omitempty"`
	ID        string `json:"id"`
	ParentID  string `json:"parent_id"`
	Kind      Kind   `json:"kind"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	Status    Status `json:"status"`
	Visible   bool   `json:"visible"`
	Remark    string `json:"remark,omitempty"`
	Attributes
	Version   uint32    `json:"version"`
	Seq       uint64    `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Node converts the record back into a node
func (r Record) Node() (n Node, err error) {
	if n.ID, err = util.ParseULID(r.ID); err != nil {
		return n, errors.Wrapf(ErrInvalidID, "record id %q", r.ID)
	}

	if util.IsZeroULID(n.ID) {
		return n, ErrZeroID
	}

	if n.ParentID, err = util.ParseULID(r.ParentID); err != nil {
		return n, errors.Wrapf(ErrInvalidID, "record parent id %q", r.ParentID)
	}

	if n.Payload, err = r.Attributes.Payload(r.Kind); err != nil {
		return n, err
	}

	n.Name = r.Name
	n.SortOrder = r.SortOrder
	n.Status = r.Status
	n.Visible = r.Visible
	n.Remark = r.Remark
	n.Version = r.Version
	n.Seq = r.Seq
	n.CreatedAt = r.CreatedAt
	n.UpdatedAt = r.UpdatedAt

	return n, nil
}

func parentString(id ulid.ULID) string {
	if util.IsZeroULID(id) {
		return ""
	}

	return id.String()
}
