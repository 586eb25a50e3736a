package tree

import (
	"strings"
)

// NodeInput is the user-supplied content of a node, used by both
// Insert and Update
// NOTE: ParentID is only consulted by Update, nil keeps the current
// parent and an empty string moves the node to the root level
type NodeInput struct {
	Kind      Kind    `json:"kind"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id,omitempty"`
	SortOrder int     `json:"sort_order"`
	Status    Status  `json:"status,omitempty"`
	Visible   *bool   `json:"visible,omitempty"`
	Remark    string  `json:"remark,omitempty"`
	Version   uint32  `json:"version,omitempty"`
	Attributes
}

// InputOf builds an input reproducing the given node, a starting
// point for partial updates
func InputOf(n Node) NodeInput {
	visible := n.Visible

	return NodeInput{
		Kind:       n.Kind(),
		Name:       n.Name,
		SortOrder:  n.SortOrder,
		Status:     n.Status,
		Visible:    &visible,
		Remark:     n.Remark,
		Version:    n.Version,
		Attributes: AttributesOf(n.Payload),
	}
}

// WithParent returns a copy of the input targeting a new parent,
// a zero id stands for the root level
func (in NodeInput) WithParent(parentID string) NodeInput {
	in.ParentID = &parentID
	return in
}

// sanitize trims free-text fields and fills defaults, an empty
// status becomes active
func (in NodeInput) sanitize() NodeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Remark = strings.TrimSpace(in.Remark)
	in.Path = strings.TrimSpace(in.Path)
	in.Component = strings.TrimSpace(in.Component)
	in.Icon = strings.TrimSpace(in.Icon)
	in.Permission = strings.TrimSpace(in.Permission)
	in.Leader = strings.TrimSpace(in.Leader)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Type = strings.TrimSpace(in.Type)
	in.Value = strings.TrimSpace(in.Value)
	in.CSSClass = strings.TrimSpace(in.CSSClass)
	in.Code = strings.TrimSpace(in.Code)

	if in.Status == "" {
		in.Status = StatusActive
	}

	return in
}

// visibility resolves the visible flag for a given entity
func (in NodeInput) visibility(e Entity) bool {
	if !e.HasVisibility() || in.Visible == nil {
		return true
	}

	return *in.Visible
}
