package tree

import (
	"github.com/pkg/errors"
)

// Payload is the kind-specific part of a node, one variant per kind
type Payload interface {
	Kind() Kind
}

// Directory groups menus, only renders a route when a component is given
type Directory struct {
	Path      string
	Component string
	Icon      string
}

// Menu is a routed page
type Menu struct {
	Path       string
	Component  string
	Icon       string
	Permission string
}

// Button is a permission-bearing action inside a page
type Button struct {
	Permission string
}

// Department is an organizational unit
type Department struct {
	Leader string
	Phone  string
	Email  string
}

// DictType is a dictionary, its entries are DictData children
type DictType struct {
	Type string
}

// DictData is a single dictionary entry
type DictData struct {
	Value     string
	IsDefault bool
	CSSClass  string
}

// Post is a job position
type Post struct {
	Code      string
	UserCount int
}

func (Directory) Kind() Kind  { return KDirectory }
func (Menu) Kind() Kind       { return KMenu }
func (Button) Kind() Kind     { return KButton }
func (Department) Kind() Kind { return KDepartment }
func (DictType) Kind() Kind   { return KDictType }
func (DictData) Kind() Kind   { return KDictData }
func (Post) Kind() Kind       { return KPost }

// Attributes is a flat representation of every payload variant,
// used by records and inputs
type Attributes struct {
	Path       string `json:"path,omitempty"`
	Component  string `json:"component,omitempty"`
	Icon       string `json:"icon,omitempty"`
	Permission string `json:"permission,omitempty"`
	Leader     string `json:"leader,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Type       string `json:"type,omitempty"`
	Value      string `json:"value,omitempty"`
	IsDefault  bool   `json:"is_default,omitempty"`
	CSSClass   string `json:"css_class,omitempty"`
	Code       string `json:"code,omitempty"`
	UserCount  int    `json:"user_count,omitempty"`
}

// Payload builds the payload variant of a given kind
func (a Attributes) Payload(k Kind) (Payload, error) {
	switch k {
	case KDirectory:
		return Directory{Path: a.Path, Component: a.Component, Icon: a.Icon}, nil
	case KMenu:
		return Menu{Path: a.Path, Component: a.Component, Icon: a.Icon, Permission: a.Permission}, nil
	case KButton:
		return Button{Permission: a.Permission}, nil
	case KDepartment:
		return Department{Leader: a.Leader, Phone: a.Phone, Email: a.Email}, nil
	case KDictType:
		return DictType{Type: a.Type}, nil
	case KDictData:
		return DictData{Value: a.Value, IsDefault: a.IsDefault, CSSClass: a.CSSClass}, nil
	case KPost:
		return Post{Code: a.Code, UserCount: a.UserCount}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidKind, "kind %d", uint16(k))
	}
}

// AttributesOf flattens a payload
func AttributesOf(p Payload) Attributes {
	switch p := p.(type) {
	case Directory:
		return Attributes{Path: p.Path, Component: p.Component, Icon: p.Icon}
	case Menu:
		return Attributes{Path: p.Path, Component: p.Component, Icon: p.Icon, Permission: p.Permission}
	case Button:
		return Attributes{Permission: p.Permission}
	case Department:
		return Attributes{Leader: p.Leader, Phone: p.Phone, Email: p.Email}
	case DictType:
		return Attributes{Type: p.Type}
	case DictData:
		return Attributes{Value: p.Value, IsDefault: p.IsDefault, CSSClass: p.CSSClass}
	case Post:
		return Attributes{Code: p.Code, UserCount: p.UserCount}
	default:
		return Attributes{}
	}
}

// uniqueKey returns a per-forest unique key of the payload, if the kind has one
func uniqueKey(p Payload) (string, bool) {
	switch p := p.(type) {
	case DictType:
		return p.Type, true
	case Post:
		return p.Code, true
	default:
		return "", false
	}
}

// searchTerms returns payload values matched by Search in addition to the name
func searchTerms(p Payload) []string {
	switch p := p.(type) {
	case Directory:
		return []string{p.Path}
	case Menu:
		return []string{p.Path, p.Permission}
	case Button:
		return []string{p.Permission}
	case DictType:
		return []string{p.Type}
	case DictData:
		return []string{p.Value}
	case Post:
		return []string{p.Code}
	default:
		return nil
	}
}
