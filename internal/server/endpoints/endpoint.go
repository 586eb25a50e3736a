package endpoints

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agubarev/orgtree/internal/core"
	"github.com/agubarev/orgtree/pkg/util/report"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HeaderRequestID carries the request id back to the caller
const HeaderRequestID = "X-Request-ID"

type contextKey string

// context keys
const (
	CKRequestID = contextKey("request_id")
	CKManager   = contextKey("manager")
)

// Endpoint wraps a handler, producing the common response envelope
type Endpoint struct {
	core    *core.Core
	name    string
	handler Handler
}

// Handler represents a custom handler
type Handler func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report)

// Response is the envelope of every endpoint response
type Response struct {
	RequestID     uuid.UUID      `json:"request_id"`
	Result        interface{}    `json:"result"`
	Auxiliary     interface{}    `json:"aux,omitempty"`
	Report        *report.Report `json:"report,omitempty"`
	ExecutionTime time.Duration  `json:"exec_time"`
}

func NewEndpoint(c *core.Core, h Handler, name string) (e Endpoint) {
	if c == nil {
		panic(core.ErrNilCore)
	}

	if h == nil {
		panic(errors.New("endpoint handler is nil"))
	}

	// basic validation
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		panic(errors.New("empty endpoint name"))
	}

	e = Endpoint{
		core:    c,
		name:    name,
		handler: h,
	}

	return e
}

// Name returns endpoint name
func (e Endpoint) Name() string {
	return e.name
}

func (e Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := e.core.Logger().Named("[" + e.name + "]")

	// injecting report into the request context, which also carries
	// client cancellation down to the store
	_, ctx := report.NewWithContext(r.Context(), logger)

	// generating request ID
	requestID := uuid.New()
	ctx = context.WithValue(ctx, CKRequestID, requestID)

	//---------------------------------------------------------------------------
	// processing request
	//---------------------------------------------------------------------------
	start := time.Now()

	// executing handler
	result, aux, code, rep := e.handler(ctx, e.core, w, r.WithContext(ctx))

	w.Header().Set(HeaderRequestID, requestID.String())

	// nothing else to say
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}

	// initializing response
	response := Response{
		RequestID:     requestID,
		Result:        result,
		Auxiliary:     aux,
		ExecutionTime: time.Since(start),
	}

	// adding report to the response only if report contains an error
	if rep != nil && rep.HasError() {
		response.Report = rep

		if code >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("request_id", requestID.String()), zap.Error(rep.Unwrap()))
		}
	}

	// marshaling handler's result
	payload, err := json.Marshal(response)
	if err != nil {
		http.Error(
			w,
			errors.Wrap(err, "failed to marshal server response").Error(),
			http.StatusInternalServerError,
		)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(code)
	w.Write(payload)
}

// RequestIDFromContext returns the request id assigned by the endpoint
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(CKRequestID).(uuid.UUID)
	return id, ok
}
