// Package serverfx assembles the registry server as an fx module.
package serverfx

import (
	"github.com/joeydtaylor/steeze-dns/pkg/core"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-dns/pkg/transport/httpx"
	"go.uber.org/fx"
)

// Module returns a complete Fx option set; add app-specific fx.Invoke(...) alongside.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		fx.Supply(cfg),

		// Middleware
		auth.Module,
		logger.Module,
		fx.Provide(fx.Annotate(metrics.ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
		fx.Provide(httpx.NewChi),

		// Registry
		fx.Provide(
			provideManifest,
			provideStore,
			provideRuntime,
			providePublisher,
			provideAsync,
			provideHooks,
			provideMutations,
			provideQueries,
			core.NewDNS,
		),

		// Router (named "app")
		fx.Provide(fx.Annotate(provideRouter, fx.ResultTags(`name:"app"`))),

		// HTTP lifecycle
		fx.Invoke(registerHooks),
	)
}
