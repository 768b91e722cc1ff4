package testenv

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// HostAlias is how the runtime container reaches ports exposed from the host.
const HostAlias = testcontainers.HostInternal

// Launcher boots one isolated runtime instance that can reach endpointPort
// on the host through HostAlias.
type Launcher interface {
	Launch(ctx context.Context, endpointPort int) (Instance, error)
}

// Instance is a started runtime.
type Instance interface {
	Host(ctx context.Context) (string, error)
	MappedPort(ctx context.Context, port int) (int, error)
	Terminate(ctx context.Context) error
}

type containerLauncher struct {
	image             string
	ingressPort       int
	adminPort         int
	ingressHealthPath string
	adminHealthPath   string
	startupTimeout    time.Duration
}

func newContainerLauncher(o Options) *containerLauncher {
	return &containerLauncher{
		image:             o.Image,
		ingressPort:       o.IngressPort,
		adminPort:         o.AdminPort,
		ingressHealthPath: o.IngressHealthPath,
		adminHealthPath:   o.AdminHealthPath,
		startupTimeout:    o.StartupTimeout,
	}
}

func tcp(port int) nat.Port { return nat.Port(strconv.Itoa(port) + "/tcp") }

func (l *containerLauncher) Launch(ctx context.Context, endpointPort int) (Instance, error) {
	req := testcontainers.ContainerRequest{
		Image:        l.image,
		ExposedPorts: []string{string(tcp(l.ingressPort)), string(tcp(l.adminPort))},
		// Must be set before the container starts.
		HostAccessPorts: []int{endpointPort},
		WaitingFor: wait.ForAll(
			wait.ForHTTP(l.ingressHealthPath).WithPort(tcp(l.ingressPort)),
			wait.ForHTTP(l.adminHealthPath).WithPort(tcp(l.adminPort)),
		).WithDeadline(l.startupTimeout),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if c != nil {
			_ = c.Terminate(context.Background())
		}
		return nil, fmt.Errorf("start runtime container %s: %w", l.image, err)
	}
	return container{c}, nil
}

type container struct{ c testcontainers.Container }

func (c container) Host(ctx context.Context) (string, error) { return c.c.Host(ctx) }

func (c container) MappedPort(ctx context.Context, port int) (int, error) {
	p, err := c.c.MappedPort(ctx, tcp(port))
	if err != nil {
		return 0, err
	}
	return p.Int(), nil
}

func (c container) Terminate(ctx context.Context) error { return c.c.Terminate(ctx) }
