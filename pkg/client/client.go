package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/agubarev/orgtree/pkg/util/report"
	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTimeout is used unless another timeout is given
const DefaultTimeout = 10 * time.Second

var _ tree.Repository = (*Client)(nil)

// Client manages a remote forest of a single entity over the HTTP API
type Client struct {
	base   *url.URL
	entity tree.Entity
	http   *http.Client
	logger *zap.Logger
}

// envelope mirrors the server response
type envelope struct {
	Result jsoniter.RawMessage `json:"result"`
	Aux    jsoniter.RawMessage `json:"aux"`
	Report *report.Report     `json:"report"`
}

type fieldIssue struct {
	Field   string `json:"field"`
	Cause   string `json:"cause"`
	Message string `json:"msg"`
}

// New returns a client of a given entity forest served at baseURL
func New(baseURL string, e tree.Entity, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Wrapf(ErrInvalidBaseURL, "%q", baseURL)
	}

	if err = e.Validate(); err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		base:   base,
		entity: e,
		http:   &http.Client{Timeout: timeout},
	}

	return c, nil
}

// SetHTTPClient replaces the underlying http client
func (c *Client) SetHTTPClient(hc *http.Client) error {
	if hc == nil {
		return ErrNilHTTPClient
	}

	c.http = hc

	return nil
}

// SetLogger assigns a logger
func (c *Client) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named(fmt.Sprintf("[client:%s]", c.entity))
	}

	c.logger = logger

	return nil
}

// Logger returns the client logger, a no-op one if none is set
func (c *Client) Logger() *zap.Logger {
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	return c.logger
}

// Entity returns the entity served by this client
func (c *Client) Entity() tree.Entity {
	return c.entity
}

// List fetches the whole remote forest
func (c *Client) List(ctx context.Context) (*tree.Forest, error) {
	var rs []tree.Record
	if _, err := c.do(ctx, http.MethodGet, "", nil, nil, &rs); err != nil {
		return nil, err
	}

	f, err := tree.NewForest(c.entity)
	if err != nil {
		return nil, err
	}

	for _, err := range f.Load(rs) {
		c.Logger().Warn("skipped remote record", zap.Error(err))
	}

	return f, nil
}

// Get fetches a single node
func (c *Client) Get(ctx context.Context, id ulid.ULID) (tree.Node, error) {
	return c.node(ctx, http.MethodGet, id.String(), nil, nil)
}

// Insert creates a node under a given parent, a zero id stands
// for the root level
func (c *Client) Insert(ctx context.Context, parentID ulid.ULID, in tree.NodeInput) (tree.Node, error) {
	parent := ""
	if parentID != (ulid.ULID{}) {
		parent = parentID.String()
	}

	return c.node(ctx, http.MethodPost, "", nil, in.WithParent(parent))
}

// Update replaces the content of a node, a non-zero input version
// is sent as If-Match
func (c *Client) Update(ctx context.Context, id ulid.ULID, in tree.NodeInput) (tree.Node, error) {
	return c.node(ctx, http.MethodPut, id.String(), ifMatch(in.Version), in)
}

// Delete removes a leaf node regardless of its version
func (c *Client) Delete(ctx context.Context, id ulid.ULID) error {
	return c.DeleteVersion(ctx, id, 0)
}

// DeleteVersion removes a leaf node if its version matches,
// zero skips the check
func (c *Client) DeleteVersion(ctx context.Context, id ulid.ULID, version uint32) error {
	_, err := c.do(ctx, http.MethodDelete, id.String(), ifMatch(version), nil, nil)
	return err
}

// ToggleStatus flips a node between active and inactive
func (c *Client) ToggleStatus(ctx context.Context, id ulid.ULID) (tree.Node, error) {
	return c.node(ctx, http.MethodPost, id.String()+"/status", nil, nil)
}

// ToggleVisible flips the visibility of a menu node
func (c *Client) ToggleVisible(ctx context.Context, id ulid.ULID) (tree.Node, error) {
	return c.node(ctx, http.MethodPost, id.String()+"/visible", nil, nil)
}

// Stats fetches node counters of the remote forest
func (c *Client) Stats(ctx context.Context) (s tree.Stats, err error) {
	_, err = c.do(ctx, http.MethodGet, "stats", nil, nil, &s)
	return s, err
}

//? BEGIN ->>>----------------------------------------------------------------
//? unexported utility functions

func ifMatch(version uint32) http.Header {
	if version == 0 {
		return nil
	}

	h := make(http.Header)
	h.Set("If-Match", strconv.Quote(strconv.FormatUint(uint64(version), 10)))

	return h
}

func (c *Client) node(ctx context.Context, method, path string, header http.Header, body interface{}) (n tree.Node, err error) {
	var r tree.Record
	if _, err = c.do(ctx, method, path, header, body, &r); err != nil {
		return n, err
	}

	if n, err = r.Node(); err != nil {
		return n, errors.Wrap(ErrMalformedResponse, err.Error())
	}

	return n, nil
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/" + string(c.entity)
	if path != "" {
		u.Path += "/" + path
	}

	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, result interface{}) (int, error) {
	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "failed to marshal request body")
		}

		rd = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rd)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create request")
	}

	for k, vs := range header {
		req.Header[k] = vs
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %s", method, req.URL.Path)
	}
	defer resp.Body.Close()

	c.Logger().Debug(
		"request done",
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errors.Wrap(err, "failed to read response body")
	}

	var env envelope
	if err = json.Unmarshal(payload, &env); err != nil {
		return resp.StatusCode, errors.Wrapf(ErrMalformedResponse, "status %d: %s", resp.StatusCode, err)
	}

	if env.Report != nil && env.Report.Err != nil {
		return resp.StatusCode, remoteError(env)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, errors.Wrapf(ErrUnexpectedStatus, "status %d", resp.StatusCode)
	}

	if result != nil {
		if err = json.Unmarshal(env.Result, result); err != nil {
			return resp.StatusCode, errors.Wrap(ErrMalformedResponse, err.Error())
		}
	}

	return resp.StatusCode, nil
}

// remoteError restores a server-side error, so it's classified by
// tree.FaultOf exactly as it would be locally
func remoteError(env envelope) error {
	e := env.Report.Err

	var issues []fieldIssue
	if len(env.Aux) > 0 && json.Unmarshal(env.Aux, &issues) == nil && len(issues) > 0 {
		ve := &tree.ValidationError{Fields: make([]tree.FieldError, 0, len(issues))}
		for _, is := range issues {
			ve.Fields = append(ve.Fields, tree.FieldError{Field: is.Field, Err: tree.LookupError(is.Cause)})
		}

		return ve
	}

	cause := tree.LookupError(e.Cause)
	if tree.FaultOf(cause) == tree.FaultInternal {
		cause = tokenError(e.Token)
	}

	return errors.Wrap(cause, e.Message)
}

// tokenError falls back to a sentinel of the error token
func tokenError(token string) error {
	switch token {
	case "not_found":
		return tree.ErrNodeNotFound
	case "has_children":
		return tree.ErrHasChildren
	case "has_users":
		return tree.ErrHasUsers
	case "version_conflict":
		return tree.ErrVersionConflict
	case "validation_failed", "bad_request":
		return &tree.ValidationError{Fields: []tree.FieldError{{Field: "request", Err: tree.ErrMalformed}}}
	default:
		return ErrRemote
	}
}
