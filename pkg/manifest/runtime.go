package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Runtime describes the external durable-execution runtime: the container
// the test harness boots and the admin API the server may register with.
type Runtime struct {
	Image             string `toml:"image"`
	IngressPort       int    `toml:"ingress_port"`
	AdminPort         int    `toml:"admin_port"`
	IngressHealthPath string `toml:"ingress_health_path"`
	AdminHealthPath   string `toml:"admin_health_path"`
	StartupTimeoutMS  int    `toml:"startup_timeout_ms"`

	AdminURL      string `toml:"admin_url"`
	AutoRegister  bool   `toml:"auto_register"`
	AdvertisedURI string `toml:"advertised_uri"` // what the runtime dials; defaults from endpoint.listen
	ForceRegister bool   `toml:"force_register"`
}

func (r *Runtime) validate() error {
	r.Image = strings.TrimSpace(r.Image)
	if r.Image == "" {
		r.Image = "docker.io/restatedev/restate:latest"
	}
	if r.IngressPort == 0 {
		r.IngressPort = 8080
	}
	if r.AdminPort == 0 {
		r.AdminPort = 9070
	}
	if !validPort(r.IngressPort) || !validPort(r.AdminPort) {
		return errors.New("runtime ports must be in 1..65535")
	}
	if r.IngressPort == r.AdminPort {
		return errors.New("runtime.ingress_port and runtime.admin_port must differ")
	}
	r.IngressHealthPath = normPath(r.IngressHealthPath, "/grpc.health.v1.Health/Check")
	r.AdminHealthPath = normPath(r.AdminHealthPath, "/health")
	if r.StartupTimeoutMS < 0 {
		return errors.New("runtime.startup_timeout_ms must be >= 0")
	}
	if r.StartupTimeoutMS == 0 {
		r.StartupTimeoutMS = 60_000
	}

	r.AdminURL = strings.TrimRight(strings.TrimSpace(r.AdminURL), "/")
	if r.AdminURL == "" {
		r.AdminURL = "http://localhost:9070"
	}
	if err := checkURL("runtime.admin_url", r.AdminURL); err != nil {
		return err
	}
	r.AdvertisedURI = strings.TrimSpace(r.AdvertisedURI)
	if r.AdvertisedURI != "" {
		if err := checkURL("runtime.advertised_uri", r.AdvertisedURI); err != nil {
			return err
		}
	}
	return nil
}

func validPort(p int) bool { return p > 0 && p <= 65535 }

func normPath(p, def string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return def
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s %q: scheme must be http or https", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s %q: host required", field, raw)
	}
	return nil
}
