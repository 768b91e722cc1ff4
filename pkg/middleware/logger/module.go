package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware, ProvideLogger),
	fx.Invoke(flushOnStop),
)

// flushOnStop syncs the system and access logs when the app shuts down.
func flushOnStop(lc fx.Lifecycle, zl *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = accessLogger().Sync()
			_ = zl.Sync()
			return nil
		},
	})
}
