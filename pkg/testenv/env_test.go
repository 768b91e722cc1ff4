package testenv

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/joeydtaylor/durable-starter/pkg/admin"
	"github.com/joeydtaylor/durable-starter/pkg/core"
	"github.com/joeydtaylor/durable-starter/pkg/durable"
	"github.com/joeydtaylor/durable-starter/pkg/services/myservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLauncher stands in for the runtime container: its admin API records
// registrations and its ingress proxies to the registered endpoint.
type fakeLauncher struct {
	mu          sync.Mutex
	launches    int
	terminated  int
	registered  []string
	adminStatus int
	launchErr   error
}

type fakeInstance struct {
	l       *fakeLauncher
	ingress *httptest.Server
	admin   *httptest.Server
}

func (l *fakeLauncher) Launch(_ context.Context, endpointPort int) (Instance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	l.launches++

	target, _ := url.Parse("http://127.0.0.1:" + strconv.Itoa(endpointPort))
	in := &fakeInstance{l: l}
	in.ingress = httptest.NewServer(httputil.NewSingleHostReverseProxy(target))
	in.admin = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/deployments" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			URI string `json:"uri"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		l.mu.Lock()
		l.registered = append(l.registered, body.URI)
		status := l.adminStatus
		l.mu.Unlock()
		if status != 0 {
			http.Error(w, "boom", status)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	return in, nil
}

func (l *fakeLauncher) snapshot() (launches, terminated int, registered []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches, l.terminated, append([]string(nil), l.registered...)
}

func (i *fakeInstance) Host(context.Context) (string, error) { return "127.0.0.1", nil }

func (i *fakeInstance) MappedPort(_ context.Context, port int) (int, error) {
	var s *httptest.Server
	switch port {
	case 8080:
		s = i.ingress
	case 9070:
		s = i.admin
	default:
		return 0, errors.New("port not exposed")
	}
	return s.Listener.Addr().(*net.TCPAddr).Port, nil
}

func (i *fakeInstance) Terminate(context.Context) error {
	i.ingress.Close()
	i.admin.Close()
	i.l.mu.Lock()
	i.l.terminated++
	i.l.mu.Unlock()
	return nil
}

func testEndpoint(t *testing.T) *core.Endpoint {
	t.Helper()
	e := core.NewEndpoint()
	require.NoError(t, e.Bind(myservice.Name, myservice.New(nil)))
	require.NoError(t, e.BindKeyed("counter", core.MustService(
		core.NewHandler("whoami", func(ctx durable.Context, _ struct{}) (string, error) {
			return ctx.Key(), nil
		}),
	)))
	return e
}

func registeredPort(t *testing.T, uri string) int {
	t.Helper()
	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, HostAlias, u.Hostname())
	p, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return p
}

func assertClosed(t *testing.T, port int) {
	t.Helper()
	c, err := net.DialTimeout("tcp", "127.0.0.1:"+strconv.Itoa(port), time.Second)
	if err == nil {
		_ = c.Close()
	}
	assert.Error(t, err, "endpoint listener should be closed")
}

func TestStartCallStop(t *testing.T) {
	fl := &fakeLauncher{}
	env := New(testEndpoint(t), WithLauncher(fl))
	assert.Equal(t, NotStarted, env.State())

	ctx := context.Background()
	st, err := env.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, Running, env.State())
	assert.NotEqual(t, st.BaseURL, st.AdminAPIBaseURL)

	_, _, reg := fl.snapshot()
	require.Len(t, reg, 1)
	port := registeredPort(t, reg[0])

	greeting, err := Call[myservice.HelloRequest, string](ctx, st.Client, "myservice", "hello", myservice.HelloRequest{Name: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "Hello bob!", greeting)

	slept, err := Call[myservice.SleepRequest, string](ctx, st.Client, "myservice", "sleepyHandler", myservice.SleepRequest{Duration: 10, Times: 3})
	require.NoError(t, err)
	assert.Equal(t, "slept for a total of 30 milliseconds", slept)

	who, err := KeyedCall[struct{}, string](ctx, st.Client, "counter", "whoami", "k-1", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "k-1", who)

	_, err = env.Start(ctx)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, st.Stop(ctx))
	assert.Equal(t, Stopped, env.State())
	assertClosed(t, port)
	assert.ErrorIs(t, st.Stop(ctx), ErrNotRunning)

	_, terminated, _ := fl.snapshot()
	assert.Equal(t, 1, terminated)
}

func TestRestartIsIndependent(t *testing.T) {
	fl := &fakeLauncher{}
	env := New(testEndpoint(t), WithLauncher(fl))
	ctx := context.Background()

	first, err := env.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Stop(ctx))

	second, err := env.Start(ctx)
	require.NoError(t, err)
	defer func() { _ = second.Stop(ctx) }()

	assert.NotEqual(t, first.BaseURL, second.BaseURL)
	launches, _, reg := fl.snapshot()
	assert.Equal(t, 2, launches)
	require.Len(t, reg, 2)
	assert.NotEqual(t, reg[0], reg[1])

	got, err := Call[myservice.HelloRequest, string](ctx, second.Client, "myservice", "hello", myservice.HelloRequest{Name: "again"})
	require.NoError(t, err)
	assert.Equal(t, "Hello again!", got)
}

func TestStartRegistrationFailureTearsDown(t *testing.T) {
	fl := &fakeLauncher{adminStatus: http.StatusBadRequest}
	env := New(testEndpoint(t), WithLauncher(fl))

	st, err := env.Start(context.Background())
	require.Nil(t, st)
	var re *admin.RegistrationError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Contains(t, err.Error(), "Error 400 during registration: boom")

	_, terminated, reg := fl.snapshot()
	assert.Equal(t, 1, terminated)
	require.Len(t, reg, 1)
	assertClosed(t, registeredPort(t, reg[0]))
	assert.Equal(t, Stopped, env.State())
}

func TestStartLaunchFailure(t *testing.T) {
	boom := errors.New("no docker")
	env := New(testEndpoint(t), WithLauncher(&fakeLauncher{launchErr: boom}))
	_, err := env.Start(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Stopped, env.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not-started", NotStarted.String())
	assert.Equal(t, "stopping", Stopping.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	assert.Equal(t, "docker.io/restatedev/restate:latest", o.Image)
	assert.Equal(t, 8080, o.IngressPort)
	assert.Equal(t, 9070, o.AdminPort)
	assert.Equal(t, "/grpc.health.v1.Health/Check", o.IngressHealthPath)
	assert.Equal(t, "/health", o.AdminHealthPath)
	assert.Equal(t, time.Minute, o.StartupTimeout)
}
