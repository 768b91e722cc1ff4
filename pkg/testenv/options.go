package testenv

import (
	"time"

	"github.com/joeydtaylor/durable-starter/pkg/manifest"
	"go.uber.org/zap"
)

type Options struct {
	Image             string
	IngressPort       int
	AdminPort         int
	IngressHealthPath string
	AdminHealthPath   string
	StartupTimeout    time.Duration
	Logger            *zap.Logger
	Launcher          Launcher // default: a testcontainers launcher built from the fields above
}

type Option func(*Options)

func WithImage(image string) Option { return func(o *Options) { o.Image = image } }
func WithPorts(ingress, admin int) Option {
	return func(o *Options) { o.IngressPort, o.AdminPort = ingress, admin }
}
func WithHealthPaths(ingress, admin string) Option {
	return func(o *Options) { o.IngressHealthPath, o.AdminHealthPath = ingress, admin }
}
func WithStartupTimeout(d time.Duration) Option { return func(o *Options) { o.StartupTimeout = d } }
func WithLogger(l *zap.Logger) Option           { return func(o *Options) { o.Logger = l } }
func WithLauncher(l Launcher) Option            { return func(o *Options) { o.Launcher = l } }

// FromRuntime maps the [runtime] section of durable.toml onto options.
func FromRuntime(r manifest.Runtime) Option {
	return func(o *Options) {
		o.Image = r.Image
		o.IngressPort, o.AdminPort = r.IngressPort, r.AdminPort
		o.IngressHealthPath, o.AdminHealthPath = r.IngressHealthPath, r.AdminHealthPath
		o.StartupTimeout = time.Duration(r.StartupTimeoutMS) * time.Millisecond
	}
}

func defaultOptions() Options {
	rt := manifest.Default().Runtime
	o := Options{Logger: zap.NewNop()}
	FromRuntime(rt)(&o)
	return o
}
