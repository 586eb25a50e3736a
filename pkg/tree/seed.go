package tree

import (
	"bytes"
	"context"
	"embed"
	"io"
	"io/ioutil"

	"github.com/oklog/ulid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// Fixture is a set of nodes to populate an empty forest with
type Fixture struct {
	Entity Entity        `yaml:"entity"`
	Nodes  []FixtureNode `yaml:"nodes"`
}

// FixtureNode is a single fixture node along with its children
type FixtureNode struct {
	Kind      string        `yaml:"kind"`
	Name      string        `yaml:"name"`
	SortOrder int           `yaml:"sort_order"`
	Status    string        `yaml:"status"`
	Visible   *bool         `yaml:"visible"`
	Remark    string        `yaml:"remark"`
	Path      string        `yaml:"path"`
	Component string        `yaml:"component"`
	Icon      string        `yaml:"icon"`
	Perm      string        `yaml:"permission"`
	Leader    string        `yaml:"leader"`
	Phone     string        `yaml:"phone"`
	Email     string        `yaml:"email"`
	Type      string        `yaml:"type"`
	Value     string        `yaml:"value"`
	IsDefault bool          `yaml:"is_default"`
	CSSClass  string        `yaml:"css_class"`
	Code      string        `yaml:"code"`
	UserCount int           `yaml:"user_count"`
	Children  []FixtureNode `yaml:"children"`
}

// Input converts a fixture node into a node input
func (fn FixtureNode) Input() (NodeInput, error) {
	k, err := ParseKind(fn.Kind)
	if err != nil {
		return NodeInput{}, errors.Wrapf(err, "fixture node %q", fn.Name)
	}

	in := NodeInput{
		Kind:      k,
		Name:      fn.Name,
		SortOrder: fn.SortOrder,
		Status:    Status(fn.Status),
		Visible:   fn.Visible,
		Remark:    fn.Remark,
		Attributes: Attributes{
			Path:       fn.Path,
			Component:  fn.Component,
			Icon:       fn.Icon,
			Permission: fn.Perm,
			Leader:     fn.Leader,
			Phone:      fn.Phone,
			Email:      fn.Email,
			Type:       fn.Type,
			Value:      fn.Value,
			IsDefault:  fn.IsDefault,
			CSSClass:   fn.CSSClass,
			Code:       fn.Code,
			UserCount:  fn.UserCount,
		},
	}

	return in, nil
}

// Count returns the number of nodes in the fixture
func (fx Fixture) Count() int {
	return countFixtureNodes(fx.Nodes)
}

func countFixtureNodes(ns []FixtureNode) (n int) {
	for _, fn := range ns {
		n += 1 + countFixtureNodes(fn.Children)
	}

	return n
}

// ParseFixtures decodes a YAML stream, one fixture per document
func ParseFixtures(r io.Reader) ([]Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	fxs := make([]Fixture, 0)
	for {
		var fx Fixture
		if err := dec.Decode(&fx); err != nil {
			if err == io.EOF {
				break
			}

			return nil, errors.Wrap(err, "failed to decode fixture")
		}

		if err := fx.Entity.Validate(); err != nil {
			return nil, err
		}

		fxs = append(fxs, fx)
	}

	return fxs, nil
}

// ReadFixtures reads fixtures from a file
func ReadFixtures(path string) ([]Fixture, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read fixtures file %s", path)
	}

	return ParseFixtures(bytes.NewReader(data))
}

// DefaultFixture returns the built-in fixture of a given entity
func DefaultFixture(e Entity) (Fixture, error) {
	if err := e.Validate(); err != nil {
		return Fixture{}, err
	}

	data, err := fixtureFiles.ReadFile("fixtures/" + string(e) + ".yaml")
	if err != nil {
		return Fixture{}, errors.Wrapf(err, "no built-in fixture for %s", e)
	}

	fxs, err := ParseFixtures(bytes.NewReader(data))
	if err != nil {
		return Fixture{}, err
	}

	if len(fxs) != 1 || fxs[0].Entity != e {
		return Fixture{}, errors.Wrapf(ErrUnknownEntity, "malformed built-in fixture for %s", e)
	}

	return fxs[0], nil
}

// Seed populates an empty forest with a fixture through the manager,
// returning the number of created nodes; a non-empty forest is left as is
func Seed(ctx context.Context, m *Manager, fx Fixture) (int, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}

	if fx.Entity != m.Entity() {
		return 0, errors.Wrapf(ErrKindMismatch, "fixture for %s given to %s manager", fx.Entity, m.Entity())
	}

	if m.Len() > 0 {
		m.Logger().Debug("forest is not empty, skipping seed")
		return 0, nil
	}

	insert := func(parentID ulid.ULID, in NodeInput) (Node, error) {
		return m.Insert(ctx, parentID, in)
	}

	created, err := seedNodes(insert, ulid.ULID{}, fx.Nodes)
	if err != nil {
		return created, err
	}

	m.Logger().Info("forest seeded", zap.Int("nodes", created))

	return created, nil
}

// Seed populates the forest directly, bypassing any store
func (f *Forest) Seed(fx Fixture) (int, error) {
	if fx.Entity != f.entity {
		return 0, errors.Wrapf(ErrKindMismatch, "fixture for %s given to %s forest", fx.Entity, f.entity)
	}

	return seedNodes(f.Insert, ulid.ULID{}, fx.Nodes)
}

type inserter func(parentID ulid.ULID, in NodeInput) (Node, error)

func seedNodes(insert inserter, parentID ulid.ULID, ns []FixtureNode) (created int, err error) {
	for _, fn := range ns {
		in, err := fn.Input()
		if err != nil {
			return created, err
		}

		n, err := insert(parentID, in)
		if err != nil {
			return created, errors.Wrapf(err, "failed to seed %q", fn.Name)
		}

		created++

		sub, err := seedNodes(insert, n.ID, fn.Children)
		created += sub
		if err != nil {
			return created, err
		}
	}

	return created, nil
}
