package logger

import (
	"os"

	"go.uber.org/zap"
)

func ProvideLoggerMiddleware() *Middleware { return &Middleware{} }

// ProvideLogger is the process-wide system logger, tagged with the host name.
func ProvideLogger() *zap.Logger {
	l := NewLog("system.log")
	if h, err := os.Hostname(); err == nil {
		l = l.With(zap.String("host", h))
	}
	return l
}
