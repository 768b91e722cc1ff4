package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewPromHttpHandler serves the default registry, OpenMetrics when asked for.
func NewPromHttpHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}),
	)
}

// ProvideMetrics is the Fx provider for the /metrics handler.
func ProvideMetrics() http.Handler { return NewPromHttpHandler() }
