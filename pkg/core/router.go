// core/router.go
package core

import (
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/durable-starter/pkg/durable"
	"github.com/joeydtaylor/durable-starter/pkg/middleware/identity"
	"github.com/joeydtaylor/durable-starter/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/durable-starter/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/durable-starter/pkg/transport/httpx"
	"go.uber.org/zap"
)

type BuildDeps struct {
	Endpoint *Endpoint
	Store    durable.Store
	Logger   *zap.Logger
	LogMW    *logger.Middleware
	Metrics  http.Handler
	Identity *identity.Verifier
	Router   httpx.Router
}

func BuildRouter(d BuildDeps) http.Handler {
	if d.Router == nil {
		d.Router = httpx.NewChi()
	}
	if d.Store == nil {
		d.Store = durable.NewMemoryStore()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Endpoint == nil {
		d.Endpoint = NewEndpoint()
	}

	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware())
	}
	r.Use(hmetrics.Collect())
	r.Use(d.Identity.Middleware(d.Logger, "/metrics", "/health"))

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}
	r.Get("/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []byte(`{"status":"ok"}`), http.StatusOK)
	}))
	r.Get("/discover", discoverHandler(d.Endpoint))
	r.Post("/{service}/{handler}", invokeHandler(d))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, routeError(req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, Terminal(http.StatusMethodNotAllowed, errorString("method "+req.Method+" not allowed")))
	})

	for _, b := range d.Endpoint.Services() {
		d.Logger.Info("service bound",
			zap.String("service", b.Name),
			zap.Bool("keyed", b.Keyed),
			zap.Strings("handlers", b.Service.Names()),
		)
	}
	return r.Mux()
}

func routeError(path string) error {
	return Terminal(http.StatusNotFound, errorString("no route for "+path))
}

type errorString string

func (e errorString) Error() string { return string(e) }
