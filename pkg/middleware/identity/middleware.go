package identity

import (
	"net/http"

	"go.uber.org/zap"
)

// Middleware rejects unsigned or badly signed requests with 401. A nil
// Verifier lets everything through. Exempt paths (health, metrics) skip the check.
func (v *Verifier) Middleware(log *zap.Logger, exempt ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if err := v.Verify(r); err != nil {
				if log != nil {
					log.Warn("request identity rejected", zap.String("uri", r.URL.Path), zap.Error(err))
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
