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
	"github.com/pkg/errors"
)

// list views
const (
	ViewRecords = ""
	ViewFlat    = "flat"
	ViewTree    = "tree"
)

// ErrUnknownView is returned for an unsupported ?view= value
var ErrUnknownView = errors.New("unknown view")

// ListMeta accompanies every listing
type ListMeta struct {
	Entity   tree.Entity `json:"entity"`
	Total    int         `json:"total"`
	Checksum uint64      `json:"checksum"`
}

// List returns the whole forest: flat records by default, depth-annotated
// items with ?view=flat (filtered with ?q=) or nested branches with ?view=tree
func List(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	rep, m, err := prepare(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	f, err := m.List(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	q := r.URL.Query()
	term := strings.TrimSpace(q.Get("q"))

	switch view := strings.ToLower(q.Get("view")); view {
	case ViewRecords:
		if term != "" {
			result = records(f.Entity(), f.Search(term))
		} else {
			result = f.Records()
		}
	case ViewFlat:
		if term != "" {
			result = f.Search(term)
		} else {
			result = f.Flatten()
		}
	case ViewTree:
		result = f.Tree()
	default:
		return endpoints.BadRequest(rep, errors.Wrapf(ErrUnknownView, "%q", view))
	}

	return result, ListMeta{Entity: f.Entity(), Total: f.Len(), Checksum: f.Checksum()}, http.StatusOK, rep
}

// Candidates returns nodes eligible as a parent, excluding the subtree
// of ?exclude= and leaf kinds; ?kind= narrows it to parents of a given kind
func Candidates(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	rep, m, err := prepare(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	q := r.URL.Query()

	exclude, err := util.ParseULID(q.Get("exclude"))
	if err != nil {
		return endpoints.Fail(rep, errors.Wrapf(tree.ErrInvalidID, "exclude id %q", q.Get("exclude")))
	}

	f, err := m.List(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	if raw := q.Get("kind"); raw != "" {
		k, err := tree.ParseKind(raw)
		if err != nil {
			return endpoints.Fail(rep, err)
		}

		return f.ParentCandidatesFor(exclude, k), nil, http.StatusOK, rep
	}

	return f.ParentCandidates(exclude), nil, http.StatusOK, rep
}

// Stats returns node counters of the forest
func Stats(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	rep, m, err := prepare(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	f, err := m.List(ctx)
	if err != nil {
		return endpoints.Fail(rep, err)
	}

	return f.Stats(), nil, http.StatusOK, rep
}

func records(e tree.Entity, items []tree.Item) []tree.Record {
	rs := make([]tree.Record, len(items))
	for i, item := range items {
		rs[i] = item.Node.Record(e)
	}

	return rs
}
