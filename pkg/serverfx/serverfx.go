package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joeydtaylor/durable-starter/pkg/admin"
	"github.com/joeydtaylor/durable-starter/pkg/core"
	"github.com/joeydtaylor/durable-starter/pkg/durable"
	"github.com/joeydtaylor/durable-starter/pkg/manifest"
	"github.com/joeydtaylor/durable-starter/pkg/middleware/identity"
	"github.com/joeydtaylor/durable-starter/pkg/middleware/logger"
	"github.com/joeydtaylor/durable-starter/pkg/middleware/metrics"
	"github.com/joeydtaylor/durable-starter/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service       string // for logs only
	ConfigEnv     string // DURABLE_CONFIG
	DefaultConfig string // durable.toml
	ListenEnv     string // SERVER_LISTEN_ADDRESS, overrides endpoint.listen
	TLSCertEnv    string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv     string // SSL_SERVER_KEY
}

type Option func(*Config)

func WithService(s string) Option          { return func(c *Config) { c.Service = s } }
func WithConfigEnv(k string) Option        { return func(c *Config) { c.ConfigEnv = k } }
func WithDefaultConfig(path string) Option { return func(c *Config) { c.DefaultConfig = path } }
func WithListenEnv(k string) Option        { return func(c *Config) { c.ListenEnv = k } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}

func defaultConfig() Config {
	return Config{
		Service:       "durable-starter",
		ConfigEnv:     "DURABLE_CONFIG",
		DefaultConfig: "durable.toml",
		ListenEnv:     "SERVER_LISTEN_ADDRESS",
		TLSCertEnv:    "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:     "SSL_SERVER_KEY",
	}
}

// Module wires everything but the *core.Endpoint, which the app provides.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		logger.Module,
		fx.Provide(fx.Annotate(metrics.ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
		fx.Provide(httpx.NewChi),
		fx.Provide(func() Config { return cfg }),
		fx.Provide(provideManifest),
		fx.Provide(provideStore),
		fx.Provide(provideIdentity),
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ResultTags(`name:"app"`),
		)),
		fx.Invoke(registerHooks),
	)
}

// ---------- Providers ----------

func provideManifest(cfg Config, zl *zap.Logger) (manifest.Config, error) {
	path := envOr(cfg.ConfigEnv, cfg.DefaultConfig)
	m, err := core.LoadConfigOrDefault(path)
	if err != nil {
		zl.Error("config load failed", zap.Error(err), zap.String("path", path))
		return manifest.Config{}, err
	}
	logger.AddBodyLogPaths(m.Endpoint.LogBodyPaths...)
	return m, nil
}

func provideIdentity(m manifest.Config) (*identity.Verifier, error) {
	leeway := time.Duration(m.Endpoint.Identity.LeewayMS) * time.Millisecond
	return identity.NewVerifier(m.Endpoint.Identity.Keys, leeway)
}

func provideStore(m manifest.Config, zl *zap.Logger) durable.Store {
	if !m.Endpoint.Journal.On() {
		zl.Info("replay journal disabled: retries re-run every effect")
		return durable.NopStore{}
	}
	return durable.NewMemoryStoreTTL(time.Duration(m.Endpoint.Journal.TTLMS) * time.Millisecond)
}

type routerDeps struct {
	fx.In
	Endpoint *core.Endpoint
	Store    durable.Store
	Identity *identity.Verifier
	LogMW    *logger.Middleware
	Metrics  http.Handler `name:"metrics"`
	Router   httpx.Router
	Logger   *zap.Logger
}

func provideRouter(d routerDeps) http.Handler {
	if d.Identity == nil {
		d.Logger.Warn("request identity verification disabled: no endpoint.identity.keys")
	}
	return core.BuildRouter(core.BuildDeps{
		Endpoint: d.Endpoint,
		Store:    d.Store,
		Logger:   d.Logger,
		LogMW:    d.LogMW,
		Metrics:  d.Metrics,
		Identity: d.Identity,
		Router:   d.Router,
	})
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Logger   *zap.Logger
	Manifest manifest.Config
	App      http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg Config, d serverDeps) {
	addr := envOr(cfg.ListenEnv, d.Manifest.Endpoint.Listen)
	cert := os.Getenv(cfg.TLSCertEnv)
	key := os.Getenv(cfg.TLSKeyEnv)
	useTLS := fileExists(cert) && fileExists(key)

	srv := httpx.NewH2CServer(addr, d.App)
	if useTLS {
		// Go's server negotiates h2 over TLS itself.
		srv.Handler = d.App
		srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS13}
	}

	regCtx, regCancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			if useTLS {
				d.Logger.Info("server starting (TLS)", zap.String("service", cfg.Service), zap.String("addr", addr), zap.String("cert", cert))
				go func() {
					if err := srv.ServeTLS(ln, cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (h2c)", zap.String("service", cfg.Service), zap.String("addr", addr))
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}

			if d.Manifest.Runtime.AutoRegister {
				uri := advertisedURI(d.Manifest.Runtime.AdvertisedURI, ln.Addr(), useTLS)
				go autoRegister(regCtx, d.Logger, d.Manifest.Runtime, uri)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			regCancel()
			return srv.Shutdown(ctx)
		},
	})
}

// autoRegister waits for the admin API to come up, then registers once.
func autoRegister(ctx context.Context, zl *zap.Logger, rt manifest.Runtime, uri string) {
	c := admin.New(rt.AdminURL)
	deadline := time.Now().Add(time.Duration(rt.StartupTimeoutMS) * time.Millisecond)
	for {
		err := c.Healthy(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			zl.Error("admin API not reachable, skipping registration", zap.String("admin", rt.AdminURL), zap.Error(err))
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
	if err := c.RegisterDeployment(ctx, uri, rt.ForceRegister); err != nil {
		zl.Error("deployment registration failed", zap.String("uri", uri), zap.Error(err))
		return
	}
	zl.Info("deployment registered", zap.String("uri", uri), zap.String("admin", rt.AdminURL))
}

func advertisedURI(configured string, a net.Addr, useTLS bool) string {
	if configured != "" {
		return configured
	}
	scheme := "http"
	if useTLS {
		scheme = "https"
	}
	port := 0
	if ta, ok := a.(*net.TCPAddr); ok {
		port = ta.Port
	}
	return scheme + "://localhost:" + strconv.Itoa(port)
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
