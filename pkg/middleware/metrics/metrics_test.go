package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectSkipsMetricsPath(t *testing.T) {
	h := Collect()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	before := testutil.ToFloat64(totalHttpRequests.WithLabelValues("202", http.MethodGet))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, before, testutil.ToFloat64(totalHttpRequests.WithLabelValues("202", http.MethodGet)))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(totalHttpRequests.WithLabelValues("202", http.MethodGet)))
	assert.Equal(t, 1.0, testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("202", UnmatchedLabel, http.MethodGet)))
	assert.Equal(t, 0.0, testutil.ToFloat64(inFlight))
}

func TestCustomSkipAndNormalizer(t *testing.T) {
	AddMetricsSkipPaths(" /health ")
	SetPathNormalizer(func(*http.Request) string { return "fixed" })
	defer SetPathNormalizer(defaultNormalizer)

	assert.True(t, settings.skip("/health"))
	assert.Equal(t, "fixed", settings.normalize(httptest.NewRequest(http.MethodGet, "/x", nil)))
}

func TestObserveInvocation(t *testing.T) {
	ObserveInvocation("svc", "h", OutcomeOK, time.Millisecond, 2, 1)
	ObserveInvocation("svc", "h", OutcomeFailure, time.Millisecond, 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(invocations.WithLabelValues("svc", "h", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(invocations.WithLabelValues("svc", "h", OutcomeFailure)))
	assert.Equal(t, 2.0, testutil.ToFloat64(effects.WithLabelValues("svc", "h", "recorded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(effects.WithLabelValues("svc", "h", "replayed")))
}

func TestURILabelUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Collect())
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	for _, p := range []string{"/items/1", "/items/2", "/nope/a", "/nope/b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("200", "/items/{id}", http.MethodGet)))
	assert.Equal(t, 2.0, testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("404", UnmatchedLabel, http.MethodGet)))
	assert.Equal(t, 0.0, testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("404", "/nope/a", http.MethodGet)))
}
