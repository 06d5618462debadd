package core

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	chimd "github.com/go-chi/chi/v5/middleware"
	manifest "github.com/joeydtaylor/steeze-dns/pkg/manifest"
	hmetrics "github.com/joeydtaylor/steeze-dns/pkg/middleware/metrics"
)

// BuildRouter mounts the manifest routes on d.Router. Every inproc handler
// a route names must already be registered.
func BuildRouter(cfg manifest.Config, d BuildDeps) (http.Handler, error) {
	handlers := make([]http.HandlerFunc, len(cfg.Routes))
	for i, rt := range cfg.Routes {
		if rt.Handler.Type != manifest.HandlerInproc {
			return nil, errors.Newf("route %s %s: unsupported handler type %q", rt.Method, rt.Path, rt.Handler.Type)
		}
		h, ok := Lookup(rt.Handler.Name)
		if !ok {
			return nil, errors.Newf("route %s %s: handler %q not registered", rt.Method, rt.Path, rt.Handler.Name)
		}
		handlers[i] = serveInproc(h)
	}

	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))

	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
	}
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware(d.Auth))
	}
	// after auth so the role label sees the caller
	r.Use(hmetrics.Collect(d.Auth))

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}

	for i, rt := range cfg.Routes {
		h := handlers[i]
		if rt.Policy.TimeoutMS > 0 {
			h = withTimeout(h, time.Duration(rt.Policy.TimeoutMS)*time.Millisecond)
		}
		r.Handle(rt.Method, rt.Path, withGuard(h, d.Auth, rt.Guard))
	}
	return r.Mux(), nil
}
