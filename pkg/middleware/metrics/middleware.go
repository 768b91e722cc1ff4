package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Collect records request counts, latency and in-flight requests. Skipped
// paths are still served, just not counted.
func Collect() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if settings.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			inFlight.Inc()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				inFlight.Dec()
				// Route pattern is only known once chi has routed the request.
				code := strconv.Itoa(ww.Status())
				totalHttpRequestsToUri.WithLabelValues(code, settings.normalize(r), r.Method).Inc()
				totalHttpRequests.WithLabelValues(code, r.Method).Inc()
				responseTime.Observe(time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
