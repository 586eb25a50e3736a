package tree

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind designates a node kind i.e. Directory, Menu, Department etc...
type Kind uint16

// node kinds
const (
	KDirectory Kind = 1 << iota
	KMenu
	KButton
	KDepartment
	KDictType
	KDictData
	KPost

	KNone Kind = 0
	KAll       = ^Kind(0)
)

var kindNames = map[Kind]string{
	KDirectory:  "directory",
	KMenu:       "menu",
	KButton:     "button",
	KDepartment: "department",
	KDictType:   "dict_type",
	KDictData:   "dict_data",
	KPost:       "post",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// ParseKind resolves a kind by its name
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}

	return KNone, errors.Wrapf(ErrInvalidKind, "kind %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, errors.Wrapf(ErrInvalidKind, "kind %d", uint16(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(b []byte) (err error) {
	*k, err = ParseKind(string(b))
	return err
}

// Has tells whether k shares any flag with mask
func (k Kind) Has(mask Kind) bool {
	return k&mask != 0
}

// IsLeaf tells whether this kind can never hold children
func (k Kind) IsLeaf() bool {
	return k.Has(KButton | KDictData | KPost)
}

// parentKinds returns a mask of kinds allowed as a parent of k,
// KNone means root-only
func (k Kind) parentKinds() Kind {
	switch k {
	case KDirectory, KMenu, KButton:
		return KDirectory | KMenu
	case KDepartment:
		return KDepartment
	case KDictData:
		return KDictType
	default:
		return KNone
	}
}

// requiresParent tells whether this kind cannot be placed at the root
func (k Kind) requiresParent() bool {
	return k == KDictData
}

// checkParent validates the placement of a child kind under a parent kind,
// KNone parent stands for the root level
func (k Kind) checkParent(parent Kind) error {
	if parent == KNone {
		if k.requiresParent() {
			return errors.Wrapf(ErrParentRequired, "%s", k)
		}

		return nil
	}

	if parent.IsLeaf() {
		return errors.Wrapf(ErrLeafParent, "%s cannot hold %s", parent, k)
	}

	allowed := k.parentKinds()
	if allowed == KNone {
		return errors.Wrapf(ErrRootOnly, "%s", k)
	}

	if !parent.Has(allowed) {
		return errors.Wrapf(ErrLeafParent, "%s cannot hold %s", parent, k)
	}

	return nil
}

// Entity designates which console screen a forest belongs to
type Entity string

// entities
const (
	EntityMenu Entity = "menu"
	EntityDept Entity = "dept"
	EntityDict Entity = "dict"
	EntityPost Entity = "post"
)

// Entities returns every known entity in a stable order
func Entities() []Entity {
	return []Entity{EntityMenu, EntityDept, EntityDict, EntityPost}
}

// ParseEntity resolves an entity by its name
func ParseEntity(s string) (Entity, error) {
	e := Entity(strings.ToLower(strings.TrimSpace(s)))
	if err := e.Validate(); err != nil {
		return "", err
	}

	return e, nil
}

// Validate checks whether the entity is known
func (e Entity) Validate() error {
	if e.Kinds() == KNone {
		return errors.Wrapf(ErrUnknownEntity, "entity %q", string(e))
	}

	return nil
}

// Kinds returns a mask of kinds accepted by the entity
func (e Entity) Kinds() Kind {
	switch e {
	case EntityMenu:
		return KDirectory | KMenu | KButton
	case EntityDept:
		return KDepartment
	case EntityDict:
		return KDictType | KDictData
	case EntityPost:
		return KPost
	default:
		return KNone
	}
}

// Accepts tells whether a given kind may live in this entity's forest
func (e Entity) Accepts(k Kind) bool {
	_, known := kindNames[k]
	return known && e.Kinds().Has(k)
}

// HasVisibility tells whether visible/hidden toggling applies
func (e Entity) HasVisibility() bool {
	return e == EntityMenu
}

// Status is an active/inactive flag of a node
type Status string

// statuses
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Validate checks whether the status is known
func (s Status) Validate() error {
	switch s {
	case StatusActive, StatusInactive:
		return nil
	default:
		return errors.Wrapf(ErrInvalidStatus, "status %q", string(s))
	}
}

// Toggle returns the opposite status
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}

	return StatusActive
}
