package serverfx

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/joeydtaylor/steeze-dns/pkg/core"
	"github.com/joeydtaylor/steeze-dns/pkg/dispatch"
	"github.com/joeydtaylor/steeze-dns/pkg/events"
	"github.com/joeydtaylor/steeze-dns/pkg/manifest"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-dns/pkg/registry"
	"github.com/joeydtaylor/steeze-dns/pkg/runtime"
	"github.com/joeydtaylor/steeze-dns/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideManifest(cfg Config, zl *zap.Logger) (manifest.Config, error) {
	path := envOr(cfg.ManifestEnv, cfg.DefaultManifest)
	man, err := manifest.Load(path)
	if err != nil {
		return manifest.Config{}, errors.Wrap(err, "manifest load failed")
	}
	logger.AddBodyLogPaths(man.BodyLogPaths()...)
	zl.Info("manifest loaded",
		zap.String("path", path),
		zap.Int("routes", len(man.Routes)),
		zap.String("id_scheme", string(man.Scheme())),
	)
	return man, nil
}

func provideStore(man manifest.Config) *registry.Store {
	return registry.NewStore(man.Scheme())
}

func provideRuntime(lc fx.Lifecycle, man manifest.Config, zl *zap.Logger) *runtime.Runtime {
	rt := runtime.New(man.Registry.MailboxBuffer, zl)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { rt.Start(); return nil },
		OnStop:  func(context.Context) error { rt.Stop(); return nil },
	})
	return rt
}

func providePublisher(cfg Config) (events.Publisher, error) {
	if cfg.Publisher != nil {
		return cfg.Publisher, nil
	}
	return events.NewRelayFromEnv()
}

func provideAsync(lc fx.Lifecycle, pub events.Publisher, man manifest.Config, zl *zap.Logger) *events.Async {
	a := events.NewAsync(pub, man.Registry.EventsBuffer, zl)
	a.OnDrop(metrics.EventDropped)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { a.Run(); return nil },
		OnStop:  func(context.Context) error { a.Close(); return nil },
	})
	return a
}

// provideHooks feeds metrics and the event queue. Both run on the
// runtime goroutine, so reading the store length here is safe.
func provideHooks(store *registry.Store, a *events.Async) dispatch.Hooks {
	return dispatch.Hooks{
		OnAction: func(surface, action string, found bool) {
			metrics.ObserveAction(surface, action, found)
			metrics.SetRecords(store.Len())
		},
		OnChange: a.Offer,
	}
}

func provideMutations(store *registry.Store, zl *zap.Logger, h dispatch.Hooks) *dispatch.Mutations {
	return dispatch.NewMutations(store, zl, h)
}

func provideQueries(store *registry.Store, h dispatch.Hooks) *dispatch.Queries {
	return dispatch.NewQueries(store, h)
}

type routerDeps struct {
	fx.In

	Manifest manifest.Config
	DNS      *core.DNS
	Auth     *auth.Middleware
	LogMW    *logger.Middleware
	Metrics  http.Handler `name:"metrics"`
	Router   httpx.Router
}

func provideRouter(d routerDeps) (http.Handler, error) {
	d.DNS.RegisterHandlers()
	return core.BuildRouter(d.Manifest, core.BuildDeps{
		Auth:    d.Auth,
		LogMW:   d.LogMW,
		Metrics: d.Metrics,
		Router:  d.Router,
	})
}
