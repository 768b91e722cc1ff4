// Package testenv boots the durable-execution runtime in a container, wires a
// locally served endpoint into it and calls handlers through the runtime's
// ingress. It is meant for integration tests.
package testenv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/joeydtaylor/durable-starter/pkg/admin"
	"github.com/joeydtaylor/durable-starter/pkg/core"
	httpx "github.com/joeydtaylor/durable-starter/pkg/transport/httpx"
	"go.uber.org/zap"
)

// Environment starts runtime instances for one endpoint. At most one instance
// is live at a time; Start again after Stop for a fresh one.
type Environment struct {
	endpoint *core.Endpoint
	opts     Options

	mu    sync.Mutex
	state State
}

func New(ep *core.Endpoint, opts ...Option) *Environment {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Launcher == nil {
		o.Launcher = newContainerLauncher(o)
	}
	return &Environment{endpoint: ep, opts: o, state: NotStarted}
}

func (e *Environment) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Environment) transition(from []State, to State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, f := range from {
		if e.state == f {
			e.state = to
			return true
		}
	}
	return false
}

func (e *Environment) set(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Started is a running runtime wired to the local endpoint.
type Started struct {
	*Client
	BaseURL         string
	AdminAPIBaseURL string

	env      *Environment
	instance Instance
	server   *http.Server
	served   chan error
	once     sync.Once
}

// Start serves the endpoint on an ephemeral port, launches the runtime,
// waits for it to be healthy and registers the endpoint with it. On any
// failure the runtime and the listener are released before returning.
func (e *Environment) Start(ctx context.Context) (*Started, error) {
	if !e.transition([]State{NotStarted, Stopped}, Starting) {
		return nil, ErrAlreadyRunning
	}
	log := e.opts.Logger

	ln, port, err := httpx.ListenEphemeral()
	if err != nil {
		e.set(Stopped)
		return nil, fmt.Errorf("listen: %w", err)
	}
	srv := httpx.NewH2CServer(ln.Addr().String(), core.BuildRouter(core.BuildDeps{
		Endpoint: e.endpoint,
		Logger:   log,
	}))
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()
	log.Info("endpoint serving", zap.Int("port", port))

	fail := func(inst Instance, err error) (*Started, error) {
		if inst != nil {
			if terr := inst.Terminate(context.Background()); terr != nil {
				log.Warn("runtime terminate failed", zap.Error(terr))
			}
		}
		_ = srv.Close()
		<-served
		e.set(Stopped)
		return nil, err
	}

	inst, err := e.opts.Launcher.Launch(ctx, port)
	if err != nil {
		return fail(nil, err)
	}

	host, err := inst.Host(ctx)
	if err != nil {
		return fail(inst, err)
	}
	ingress, err := inst.MappedPort(ctx, e.opts.IngressPort)
	if err != nil {
		return fail(inst, err)
	}
	adminPort, err := inst.MappedPort(ctx, e.opts.AdminPort)
	if err != nil {
		return fail(inst, err)
	}
	baseURL := "http://" + net.JoinHostPort(host, strconv.Itoa(ingress))
	adminURL := "http://" + net.JoinHostPort(host, strconv.Itoa(adminPort))

	uri := "http://" + net.JoinHostPort(HostAlias, strconv.Itoa(port))
	log.Info("registering deployment", zap.String("uri", uri), zap.String("admin", adminURL))
	if err := admin.New(adminURL).RegisterDeployment(ctx, uri, false); err != nil {
		return fail(inst, err)
	}
	log.Info("deployment registered", zap.String("uri", uri))

	e.set(Running)
	return &Started{
		Client:          NewClient(baseURL),
		BaseURL:         baseURL,
		AdminAPIBaseURL: adminURL,
		env:             e,
		instance:        inst,
		server:          srv,
		served:          served,
	}, nil
}

// Stop terminates the runtime, then closes the local listener. Only the first
// call does anything; later calls return ErrNotRunning.
func (s *Started) Stop(ctx context.Context) error {
	err := ErrNotRunning
	s.once.Do(func() {
		s.env.set(Stopping)
		terr := s.instance.Terminate(ctx)
		cerr := s.server.Close()
		if serr := <-s.served; serr != nil && !errors.Is(serr, http.ErrServerClosed) && cerr == nil {
			cerr = serr
		}
		s.env.set(Stopped)
		err = errors.Join(terr, cerr)
	})
	return err
}
