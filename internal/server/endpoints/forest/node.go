package forest

import (
	"context"
	"net/http"
	"strings"

	"github.com/agubarev/orgtree/internal/core"
	"github.com/agubarev/orgtree/internal/server/endpoints"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/agubarev/orgtree/pkg/util"
	"github.com/agubarev/orgtree/pkg/util/report"
	"github.com/oklog/ulid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Get returns a single node, its version being the ETag
func Get(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	rep, m, err := prepare(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	id, err := nodeID(r)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	n, err := m.Get(ctx, id)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	setETag(w, n)

	return n.Record(m.Entity()), nil, http.StatusOK, rep
}

// Post creates a node under the parent given by "parent_id" of the body
func Post(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	rep, m, err := prepare(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	in, err := decodeInput(r)
	if err != nil {
		return endpoints.BadRequest(rep, err)
	}

	parentID := ""
	if in.ParentID != nil {
		parentID = strings.TrimSpace(*in.ParentID)
	}

	pid, err := util.ParseULID(parentID)
	if err != nil {
		return endpoints.Fail(rep, errors.Wrapf(tree.ErrInvalidID, "parent id %q", parentID))
	}

	n, err := m.Insert(ctx, pid, in)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	rep.Info("node created", zap.String("id", n.ID.String()))
	setETag(w, n)

	return n.Record(m.Entity()), nil, http.StatusCreated, rep
}

// Put replaces the content of a node; a version given by If-Match
// takes precedence over the one in the body
func Put(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	rep, m, err := prepare(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	id, err := nodeID(r)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	version, err := ifMatch(r)
	if err != nil {
		return endpoints.BadRequest(rep, err)
	}

	in, err := decodeInput(r)
	if err != nil {
		return endpoints.BadRequest(rep, err)
	}

	if version != 0 {
		in.Version = version
	}

	n, err := m.Update(ctx, id, in)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	setETag(w, n)

	return n.Record(m.Entity()), nil, http.StatusOK, rep
}

// Delete removes a leaf node, honouring If-Match
func Delete(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	rep, m, err := prepare(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	id, err := nodeID(r)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	version, err := ifMatch(r)
	if err != nil {
		return endpoints.BadRequest(rep, err)
	}

	if err = m.DeleteVersion(ctx, id, version); err != nil {
		return endpoints.Fail(rep, err)
	}

	return nil, nil, http.StatusNoContent, rep
}

// ToggleStatus flips a node between active and inactive
func ToggleStatus(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	return toggle(ctx, w, r, (*tree.Manager).ToggleStatus)
}

// ToggleVisible flips the visibility of a menu node
func ToggleVisible(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	return toggle(ctx, w, r, (*tree.Manager).ToggleVisible)
}

type toggleFunc func(m *tree.Manager, ctx context.Context, id ulid.ULID) (tree.Node, error)

func toggle(ctx context.Context, w http.ResponseWriter, r *http.Request, fn toggleFunc) (result interface{}, aux interface{}, code int, rep *report.Report) {
	rep, m, err := prepare(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	id, err := nodeID(r)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	n, err := fn(m, ctx, id)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	setETag(w, n)

	return n.Record(m.Entity()), nil, http.StatusOK, rep
}
