package logger

import (
	"net/http"
	"strings"
	"sync"
)

// maxLoggedBody caps what the access log will copy out of a request.
const maxLoggedBody = 64 << 10

// bodyAllowlist holds exact paths and "/prefix/*" patterns.
type bodyAllowlist struct {
	mu       sync.RWMutex
	exact    map[string]struct{}
	prefixes []string
}

var bodyLog = &bodyAllowlist{exact: map[string]struct{}{}}

// AddBodyLogPaths extends the set of paths whose request bodies are logged.
// A trailing "/*" matches every path under the prefix, so "/myservice/*"
// covers all handlers of one service.
func AddBodyLogPaths(paths ...string) {
	bodyLog.mu.Lock()
	defer bodyLog.mu.Unlock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
		case strings.HasSuffix(p, "/*"):
			bodyLog.prefixes = append(bodyLog.prefixes, strings.TrimSuffix(p, "*"))
		default:
			bodyLog.exact[p] = struct{}{}
		}
	}
}

func (a *bodyAllowlist) allowed(path string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.exact[path]; ok {
		return true
	}
	for _, pre := range a.prefixes {
		if strings.HasPrefix(path, pre) {
			return true
		}
	}
	return false
}

// shouldPeek avoids buffering bodies the allowlist would discard anyway.
func shouldPeek(r *http.Request) bool {
	if r.ContentLength > maxLoggedBody {
		return false
	}
	return bodyLog.allowed(r.URL.Path)
}

// Only small JSON envelopes posted to allowlisted routes are logged.
func shouldLogBody(r *http.Request, body []byte) bool {
	if r.Method != http.MethodPost {
		return false
	}
	if len(body) == 0 || len(body) > maxLoggedBody {
		return false
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return false
	}
	return bodyLog.allowed(r.URL.Path)
}
