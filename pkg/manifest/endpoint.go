package manifest

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Endpoint configures the HTTP/2 listener that serves the handlers.
type Endpoint struct {
	Listen string `toml:"listen"`
	// Name the example handlers are bound under.
	ServiceName string   `toml:"service_name"`
	Identity    Identity `toml:"identity"`
	Journal     Journal  `toml:"journal"`
	// Paths whose small JSON request bodies are written to the access log.
	LogBodyPaths []string `toml:"log_body_paths"`
}

// Identity enables request-identity verification when Keys is non-empty.
// Each key is a base64 raw Ed25519 public key or a PEM "PUBLIC KEY" block.
type Identity struct {
	Keys     []string `toml:"keys"`
	LeewayMS int      `toml:"leeway_ms"`
}

// Journal controls the local replay journal. Enabled defaults to true.
type Journal struct {
	Enabled *bool `toml:"enabled"`
	TTLMS   int   `toml:"ttl_ms"`
}

// On reports whether journals are kept for retries.
func (j Journal) On() bool { return j.Enabled == nil || *j.Enabled }

func (e *Endpoint) validate() error {
	e.Listen = strings.TrimSpace(e.Listen)
	if e.Listen == "" {
		e.Listen = ":9080"
	}
	if _, _, err := net.SplitHostPort(e.Listen); err != nil {
		return fmt.Errorf("endpoint.listen %q: %w", e.Listen, err)
	}
	e.ServiceName = strings.TrimSpace(e.ServiceName)
	if e.ServiceName == "" {
		e.ServiceName = "myservice"
	}
	if strings.ContainsAny(e.ServiceName, "/ \t\n") {
		return fmt.Errorf("endpoint.service_name %q: must not contain '/' or whitespace", e.ServiceName)
	}
	if e.Journal.TTLMS < 0 {
		return errors.New("endpoint.journal.ttl_ms must be >= 0")
	}
	if e.Journal.TTLMS == 0 {
		e.Journal.TTLMS = 15 * 60 * 1000
	}
	if e.Identity.LeewayMS < 0 {
		return errors.New("endpoint.identity.leeway_ms must be >= 0")
	}
	keys := e.Identity.Keys[:0]
	for _, k := range e.Identity.Keys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	e.Identity.Keys = keys
	return nil
}
