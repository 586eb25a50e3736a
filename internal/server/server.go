package server

import (
	"context"
	"net/http"
	"time"

	"github.com/agubarev/orgtree/internal/core"
	"github.com/agubarev/orgtree/internal/server/endpoints"
	epforest "github.com/agubarev/orgtree/internal/server/endpoints/forest"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds the graceful shutdown of a running server
const ShutdownTimeout = 10 * time.Second

// Options of a running server
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Router returns the complete API router
func Router(c *core.Core) http.Handler {
	if c == nil {
		panic(core.ErrNilCore)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(MiddlewareRecover(c.Logger()))
	r.Use(MiddlewareLogging(c.Logger()))

	r.Method(http.MethodGet, "/health", endpoints.NewEndpoint(c, Health, "health"))

	//---------------------------------------------------------------------------
	// API ROUTING (V1)
	//---------------------------------------------------------------------------
	r.Route("/api/v1/{entity}", func(r chi.Router) {
		r.Use(endpoints.MiddlewareEntity(c))

		r.Method(http.MethodGet, "/", endpoints.NewEndpoint(c, epforest.List, "list_nodes"))
		r.Method(http.MethodPost, "/", endpoints.NewEndpoint(c, epforest.Post, "post_node"))
		r.Method(http.MethodGet, "/candidates", endpoints.NewEndpoint(c, epforest.Candidates, "get_candidates"))
		r.Method(http.MethodGet, "/stats", endpoints.NewEndpoint(c, epforest.Stats, "get_stats"))

		r.Route("/{id}", func(r chi.Router) {
			r.Method(http.MethodGet, "/", endpoints.NewEndpoint(c, epforest.Get, "get_node"))
			r.Method(http.MethodPut, "/", endpoints.NewEndpoint(c, epforest.Put, "put_node"))
			r.Method(http.MethodDelete, "/", endpoints.NewEndpoint(c, epforest.Delete, "delete_node"))
			r.Method(http.MethodPost, "/status", endpoints.NewEndpoint(c, epforest.ToggleStatus, "toggle_status"))
			r.Method(http.MethodPost, "/visible", endpoints.NewEndpoint(c, epforest.ToggleVisible, "toggle_visible"))
		})
	})

	return r
}

// Run serves the API until the context is cancelled, then shuts
// the server down gracefully
func Run(ctx context.Context, c *core.Core, opts Options) (err error) {
	srv := &http.Server{
		Addr:         opts.Addr,
		Handler:      Router(c),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	l := c.Logger()

	errch := make(chan error, 1)
	go func() {
		l.Info("starting http server", zap.String("addr", opts.Addr))
		errch <- srv.ListenAndServe()
	}()

	select {
	case err = <-errch:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	l.Info("shutting down http server")

	sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "failed to shut down http server")
	}

	return nil
}
