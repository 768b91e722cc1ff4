package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log files go under $DURABLE_LOG_DIR (default "log"), at $LOG_LEVEL
// (default info).
const (
	envLogDir   = "DURABLE_LOG_DIR"
	envLogLevel = "LOG_LEVEL"
)

func logDir() string {
	dir := strings.TrimSpace(os.Getenv(envLogDir))
	if dir == "" {
		dir = "log"
	}
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func logLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(os.Getenv(envLogLevel))
	if err != nil {
		return zap.InfoLevel
	}
	return lvl
}

// NewLog tees JSON logs to stdout and a rotated file named n.
func NewLog(n string) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(cfg)
	lvl := logLevel()

	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir(), n),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	return zap.New(zapcore.NewTee(
		zapcore.NewCore(enc, file, lvl),
		zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stdout), lvl),
	))
}

var (
	accessMu         sync.Mutex
	httpAccessLogger *zap.Logger
)

func accessLogger() *zap.Logger {
	accessMu.Lock()
	defer accessMu.Unlock()
	if httpAccessLogger == nil {
		httpAccessLogger = NewLog("http-access.log")
	}
	return httpAccessLogger
}

// SetAccessLogger lets tests/CLIs override the access logger.
func SetAccessLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	accessMu.Lock()
	httpAccessLogger = l
	accessMu.Unlock()
}
