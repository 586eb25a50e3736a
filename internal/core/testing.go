package core

import (
	"context"

	"github.com/agubarev/orgtree/pkg/tree"
	"go.uber.org/zap"
)

// NewForTesting returns an initialized in-memory core; seeded with
// the built-in fixtures when asked to
func NewForTesting(ctx context.Context, seed bool) (*Core, error) {
	c, err := NewWithStore(tree.NewMemoryStore())
	if err != nil {
		return nil, err
	}

	if err = c.SetLogger(zap.NewNop()); err != nil {
		return nil, err
	}

	if err = c.Init(ctx); err != nil {
		return nil, err
	}

	if seed {
		if _, err = c.Seed(ctx, ""); err != nil {
			return nil, err
		}
	}

	return c, nil
}
