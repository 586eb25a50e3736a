package server_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/agubarev/orgtree/internal/core"
	"github.com/agubarev/orgtree/internal/server"
	"github.com/agubarev/orgtree/internal/server/endpoints"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/agubarev/orgtree/pkg/util/report"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type envelope struct {
	RequestID string             `json:"request_id"`
	Result    jsoniter.RawMessage `json:"result"`
	Aux       jsoniter.RawMessage `json:"aux"`
	Report    *report.Report     `json:"report"`
}

func (env envelope) token() string {
	if env.Report == nil || env.Report.Err == nil {
		return ""
	}

	return env.Report.Err.Token
}

type harness struct {
	t   *testing.T
	srv *httptest.Server
}

func newHarness(t *testing.T) *harness {
	c, err := core.NewForTesting(context.Background(), true)
	require.NoError(t, err)

	return &harness{t: t, srv: httptest.NewServer(server.Router(c))}
}

func (h *harness) do(method, path string, body interface{}, header ...string) (*http.Response, envelope) {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(h.t, err)
		rd = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(h.t, err)

	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	payload, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)

	if len(payload) > 0 {
		require.NoError(h.t, json.Unmarshal(payload, &env), string(payload))
	}

	return resp, env
}

func (h *harness) records(entity string) map[string]tree.Record {
	resp, env := h.do(http.MethodGet, "/api/v1/"+entity, nil)
	require.Equal(h.t, http.StatusOK, resp.StatusCode)

	var rs []tree.Record
	require.NoError(h.t, json.Unmarshal(env.Result, &rs))

	byName := make(map[string]tree.Record, len(rs))
	for _, r := range rs {
		byName[r.Name] = r
	}

	return byName
}

func TestHealth(t *testing.T) {
	a := assert.New(t)
	h := newHarness(t)
	defer h.srv.Close()

	resp, env := h.do(http.MethodGet, "/health", nil)
	a.Equal(http.StatusOK, resp.StatusCode)
	a.NotEmpty(resp.Header.Get(endpoints.HeaderRequestID))
	a.Equal(resp.Header.Get(endpoints.HeaderRequestID), env.RequestID)

	var status server.HealthStatus
	a.NoError(json.Unmarshal(env.Result, &status))
	a.Equal("ok", status.Status)
	a.Equal(17, status.Nodes[tree.EntityMenu])
	a.Equal(6, status.Nodes[tree.EntityPost])
}

func TestListViews(t *testing.T) {
	a := assert.New(t)
	h := newHarness(t)
	defer h.srv.Close()

	a.Len(h.records("dept"), 5)

	// depth-annotated items
	resp, env := h.do(http.MethodGet, "/api/v1/dept?view=flat", nil)
	a.Equal(http.StatusOK, resp.StatusCode)

	var items []struct {
		Node  tree.Record `json:"node"`
		Depth int         `json:"depth"`
	}
	a.NoError(json.Unmarshal(env.Result, &items))
	a.Len(items, 5)
	a.Equal("总公司", items[0].Node.Name)
	a.Equal(0, items[0].Depth)
	a.Equal("技术部", items[1].Node.Name)
	a.Equal(1, items[1].Depth)
	a.Equal("前端组", items[2].Node.Name)
	a.Equal(2, items[2].Depth)

	var meta struct {
		Entity string `json:"entity"`
		Total  int    `json:"total"`
	}
	a.NoError(json.Unmarshal(env.Aux, &meta))
	a.Equal("dept", meta.Entity)
	a.Equal(5, meta.Total)

	// search narrows the listing
	resp, env = h.do(http.MethodGet, "/api/v1/dept?view=flat&q="+url.QueryEscape("前端"), nil)
	a.Equal(http.StatusOK, resp.StatusCode)
	a.NoError(json.Unmarshal(env.Result, &items))
	a.Len(items, 1)

	// nested
	resp, env = h.do(http.MethodGet, "/api/v1/dept?view=tree", nil)
	a.Equal(http.StatusOK, resp.StatusCode)

	var branches []struct {
		Node     tree.Record       `json:"node"`
		Children []jsoniter.RawMessage `json:"children"`
	}
	a.NoError(json.Unmarshal(env.Result, &branches))
	a.Len(branches, 1)
	a.Len(branches[0].Children, 2)

	resp, env = h.do(http.MethodGet, "/api/v1/dept?view=bogus", nil)
	a.Equal(http.StatusBadRequest, resp.StatusCode)
	a.Equal(endpoints.TokenBadRequest, env.token())

	resp, env = h.do(http.MethodGet, "/api/v1/role", nil)
	a.Equal(http.StatusNotFound, resp.StatusCode)
	a.Equal(endpoints.TokenNotFound, env.token())
}

func TestCreateUpdateDelete(t *testing.T) {
	a := assert.New(t)
	h := newHarness(t)
	defer h.srv.Close()

	root := h.records("dept")["总公司"]

	// creating
	resp, env := h.do(http.MethodPost, "/api/v1/dept", map[string]interface{}{
		"kind":       "department",
		"name":       "研发部",
		"parent_id":  root.ID,
		"leader":     "孙八",
		"sort_order": 3,
	})
	a.Equal(http.StatusCreated, resp.StatusCode)
	a.Equal(`"1"`, resp.Header.Get("ETag"))

	var created tree.Record
	a.NoError(json.Unmarshal(env.Result, &created))
	a.Equal(root.ID, created.ParentID)
	a.Equal(tree.EntityDept, created.Entity)
	a.EqualValues(1, created.Version)

	// reading it back
	resp, env = h.do(http.MethodGet, "/api/v1/dept/"+created.ID, nil)
	a.Equal(http.StatusOK, resp.StatusCode)
	a.Equal(`"1"`, resp.Header.Get("ETag"))

	// updating with a matching version
	update := map[string]interface{}{
		"kind":   "department",
		"name":   "研发中心",
		"leader": "孙八",
	}

	resp, env = h.do(http.MethodPut, "/api/v1/dept/"+created.ID, update, "If-Match", `"1"`)
	a.Equal(http.StatusOK, resp.StatusCode)
	a.Equal(`"2"`, resp.Header.Get("ETag"))

	var updated tree.Record
	a.NoError(json.Unmarshal(env.Result, &updated))
	a.Equal("研发中心", updated.Name)
	a.Equal(root.ID, updated.ParentID)

	// stale version
	resp, env = h.do(http.MethodPut, "/api/v1/dept/"+created.ID, update, "If-Match", `"1"`)
	a.Equal(http.StatusPreconditionFailed, resp.StatusCode)
	a.Equal(endpoints.TokenVersionConflict, env.token())

	resp, env = h.do(http.MethodDelete, "/api/v1/dept/"+created.ID, nil, "If-Match", `"1"`)
	a.Equal(http.StatusPreconditionFailed, resp.StatusCode)

	// a node with children stays
	resp, env = h.do(http.MethodDelete, "/api/v1/dept/"+root.ID, nil)
	a.Equal(http.StatusConflict, resp.StatusCode)
	a.Equal(endpoints.TokenHasChildren, env.token())

	// a leaf goes
	resp, _ = h.do(http.MethodDelete, "/api/v1/dept/"+created.ID, nil, "If-Match", `"2"`)
	a.Equal(http.StatusNoContent, resp.StatusCode)

	resp, env = h.do(http.MethodGet, "/api/v1/dept/"+created.ID, nil)
	a.Equal(http.StatusNotFound, resp.StatusCode)
	a.Equal(endpoints.TokenNotFound, env.token())

	resp, _ = h.do(http.MethodDelete, "/api/v1/dept/"+created.ID, nil)
	a.Equal(http.StatusNotFound, resp.StatusCode)

	a.Len(h.records("dept"), 5)
}

func TestValidationFailure(t *testing.T) {
	a := assert.New(t)
	h := newHarness(t)
	defer h.srv.Close()

	resp, env := h.do(http.MethodPost, "/api/v1/dept", map[string]interface{}{
		"kind":  "department",
		"name":  "  ",
		"phone": "12345",
	})
	a.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	a.Equal(endpoints.TokenValidation, env.token())

	var issues []endpoints.FieldIssue
	a.NoError(json.Unmarshal(env.Aux, &issues))

	fields := make(map[string]string)
	for _, is := range issues {
		fields[is.Field] = is.Cause
	}

	a.Equal(tree.ErrEmptyName.Error(), fields["name"])
	a.Equal(tree.ErrRequired.Error(), fields["leader"])
	a.Contains(fields, "phone")

	// structural violations are validation failures too
	resp, env = h.do(http.MethodPost, "/api/v1/menu", map[string]interface{}{
		"kind":       "button",
		"name":       "orphan",
		"permission": "system:orphan",
		"parent_id":  h.records("menu")["用户查询"].ID,
	})
	a.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	a.Equal(endpoints.TokenValidation, env.token())
	a.Equal(tree.ErrLeafParent.Error(), env.Report.Err.Cause)

	resp, env = h.do(http.MethodPost, "/api/v1/dept", "{not json")
	a.Equal(http.StatusBadRequest, resp.StatusCode)
	a.Equal(endpoints.TokenBadRequest, env.token())

	resp, env = h.do(http.MethodGet, "/api/v1/dept/not-an-id", nil)
	a.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDeletePostWithUsers(t *testing.T) {
	a := assert.New(t)
	h := newHarness(t)
	defer h.srv.Close()

	posts := h.records("post")

	resp, env := h.do(http.MethodDelete, "/api/v1/post/"+posts["技术总监"].ID, nil)
	a.Equal(http.StatusConflict, resp.StatusCode)
	a.Equal(endpoints.TokenHasUsers, env.token())

	resp, _ = h.do(http.MethodDelete, "/api/v1/post/"+posts["测试工程师"].ID, nil)
	a.Equal(http.StatusNoContent, resp.StatusCode)
	a.Len(h.records("post"), 5)
}

func TestToggles(t *testing.T) {
	a := assert.New(t)
	h := newHarness(t)
	defer h.srv.Close()

	menu := h.records("menu")["用户管理"]
	a.True(menu.Visible)

	resp, env := h.do(http.MethodPost, "/api/v1/menu/"+menu.ID+"/visible", nil)
	a.Equal(http.StatusOK, resp.StatusCode)

	var r tree.Record
	a.NoError(json.Unmarshal(env.Result, &r))
	a.False(r.Visible)

	resp, env = h.do(http.MethodPost, "/api/v1/menu/"+menu.ID+"/status", nil)
	a.Equal(http.StatusOK, resp.StatusCode)
	a.NoError(json.Unmarshal(env.Result, &r))
	a.Equal(tree.StatusInactive, r.Status)

	// departments have no visibility
	dept := h.records("dept")["技术部"]
	resp, env = h.do(http.MethodPost, "/api/v1/dept/"+dept.ID+"/visible", nil)
	a.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	a.Equal(tree.ErrVisibilityUnsupported.Error(), env.Report.Err.Cause)
}

func TestCandidatesAndStats(t *testing.T) {
	a := assert.New(t)
	h := newHarness(t)
	defer h.srv.Close()

	depts := h.records("dept")

	resp, env := h.do(http.MethodGet, "/api/v1/dept/candidates?exclude="+depts["技术部"].ID, nil)
	a.Equal(http.StatusOK, resp.StatusCode)

	var items []struct {
		Node tree.Record `json:"node"`
	}
	a.NoError(json.Unmarshal(env.Result, &items))

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Node.Name)
	}
	a.Equal([]string{"总公司", "市场部"}, names)

	resp, env = h.do(http.MethodGet, "/api/v1/dept/candidates?exclude=garbage", nil)
	a.Equal(http.StatusUnprocessableEntity, resp.StatusCode)

	resp, env = h.do(http.MethodGet, "/api/v1/post/stats", nil)
	a.Equal(http.StatusOK, resp.StatusCode)

	var stats tree.Stats
	a.NoError(json.Unmarshal(env.Result, &stats))
	a.Equal(6, stats.Total)
	a.Equal(1, stats.Inactive)
	a.Equal(6, stats.ByKind[tree.KPost])
}
