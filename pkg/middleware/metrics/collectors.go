package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time in seconds.",
			// sleepyHandler and catalog lookups make multi-second responses normal.
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_requests_in_flight", Help: "requests currently being served"},
	)

	invocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "durable_invocations_total", Help: "handler invocations by outcome"},
		[]string{"service", "handler", "outcome"},
	)

	invocationTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "durable_invocation_seconds",
			Help:    "handler invocation wall time.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "handler"},
	)

	effects = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "durable_effects_total", Help: "journal entries recorded or replayed"},
		[]string{"service", "handler", "source"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsToUri,
		totalHttpRequests,
		inFlight,
		invocations,
		invocationTime,
		effects,
	)
}
