package metrics

import (
	"net/http"
	"strings"
	"sync"

	"github.com/joeydtaylor/durable-starter/pkg/transport/httpx"
)

type collectSettings struct {
	mu         sync.RWMutex
	skipPaths  map[string]struct{}
	normalizer func(*http.Request) string
}

var settings = &collectSettings{
	skipPaths: map[string]struct{}{"/metrics": {}, "/ping": {}},
	normalizer: defaultNormalizer,
}

// UnmatchedLabel is the uri label of requests no route matched.
const UnmatchedLabel = "unmatched"

// defaultNormalizer keeps the uri label bounded to the registered routes.
func defaultNormalizer(r *http.Request) string {
	if p := httpx.MatchedPattern(r); p != "" {
		return p
	}
	return UnmatchedLabel
}

// AddMetricsSkipPaths lets callers extend the skip list.
func AddMetricsSkipPaths(paths ...string) {
	settings.mu.Lock()
	defer settings.mu.Unlock()
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			settings.skipPaths[p] = struct{}{}
		}
	}
}

// SetPathNormalizer overrides how the uri label is derived from a request.
func SetPathNormalizer(fn func(*http.Request) string) {
	if fn == nil {
		return
	}
	settings.mu.Lock()
	settings.normalizer = fn
	settings.mu.Unlock()
}

func (s *collectSettings) skip(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.skipPaths[path]
	return ok
}

func (s *collectSettings) normalize(r *http.Request) string {
	s.mu.RLock()
	fn := s.normalizer
	s.mu.RUnlock()
	return fn(r)
}
