package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the system logger and the access-log middleware.
var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware),
	fx.Provide(ProvideLogger),
)

func ProvideLoggerMiddleware() *Middleware { return NewMiddleware(NewLog("http-access.log")) }

// ProvideLogger flushes on stop so the last lines reach log/system.log.
func ProvideLogger(lc fx.Lifecycle) *zap.Logger {
	l := NewLog("system.log")
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		_ = l.Sync()
		return nil
	}})
	return l
}
