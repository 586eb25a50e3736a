// Package forest holds the endpoints of entity forests, every handler
// expects its tree manager resolved by endpoints.MiddlewareEntity
package forest

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/agubarev/orgtree/internal/server/endpoints"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/agubarev/orgtree/pkg/util"
	"github.com/agubarev/orgtree/pkg/util/report"
	"github.com/go-chi/chi"
	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxBodySize limits the size of a request body
const MaxBodySize = 1 << 20

// errors
var (
	ErrMalformedBody    = errors.New("malformed request body")
	ErrMalformedIfMatch = errors.New("malformed If-Match header")
)

// prepare obtains the request report and the resolved tree manager
func prepare(ctx context.Context) (*report.Report, *tree.Manager, error) {
	rep, err := report.FromContext(ctx)
	if err != nil {
		rep = report.New(zap.NewNop())
	}

	m, err := endpoints.ManagerFromContext(ctx)
	if err != nil {
		return rep, nil, err
	}

	return rep, m, nil
}

// nodeID parses the {id} route parameter
func nodeID(r *http.Request) (ulid.ULID, error) {
	raw := chi.URLParam(r, "id")

	id, err := util.ParseULID(raw)
	if err != nil || util.IsZeroULID(id) {
		return ulid.ULID{}, errors.Wrapf(tree.ErrInvalidID, "node id %q", raw)
	}

	return id, nil
}

// decodeInput reads a node input from the request body
func decodeInput(r *http.Request) (in tree.NodeInput, err error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		return in, errors.Wrap(err, "failed to read request body")
	}

	if err = json.Unmarshal(body, &in); err != nil {
		return in, errors.Wrap(ErrMalformedBody, err.Error())
	}

	return in, nil
}

// ifMatch returns the version expected by the If-Match header,
// zero if there's no header or it's a wildcard
func ifMatch(r *http.Request) (uint32, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return 0, nil
	}

	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedIfMatch, "%q", raw)
	}

	return uint32(v), nil
}

// setETag exposes the node version as its entity tag
func setETag(w http.ResponseWriter, n tree.Node) {
	w.Header().Set("ETag", ETag(n.Version))
}

// ETag formats a node version as an entity tag
func ETag(version uint32) string {
	return strconv.Quote(strconv.FormatUint(uint64(version), 10))
}
