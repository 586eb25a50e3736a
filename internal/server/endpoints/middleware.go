package endpoints

import (
	"context"
	"net/http"

	"github.com/agubarev/orgtree/internal/core"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/agubarev/orgtree/pkg/util/report"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

// MiddlewareEntity resolves the {entity} route parameter into its tree
// manager and adds it to the request context
func MiddlewareEntity(c *core.Core) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m, err := resolveManager(c, chi.URLParam(r, "entity"))
			if err != nil {
				NewEndpoint(c, func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (interface{}, interface{}, int, *report.Report) {
					rep, _ := report.FromContext(ctx)
					return Fail(rep, err)
				}, "resolve_entity").ServeHTTP(w, r)

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CKManager, m)))
		})
	}
}

// ManagerFromContext returns the tree manager resolved by MiddlewareEntity
func ManagerFromContext(ctx context.Context) (*tree.Manager, error) {
	m, ok := ctx.Value(CKManager).(*tree.Manager)
	if !ok || m == nil {
		return nil, tree.ErrNilManager
	}

	return m, nil
}

func resolveManager(c *core.Core, name string) (*tree.Manager, error) {
	e, err := tree.ParseEntity(name)
	if err != nil {
		// unknown collections simply don't exist
		return nil, errors.Wrapf(tree.ErrNodeNotFound, "unknown entity %q", name)
	}

	return c.Manager(e)
}
