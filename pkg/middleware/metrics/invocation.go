package metrics

import "time"

const (
	OutcomeOK      = "ok"
	OutcomeFailure = "failure"
)

// ObserveInvocation records one handler execution and its journal activity.
func ObserveInvocation(service, handler, outcome string, took time.Duration, recorded, replayed int) {
	invocations.WithLabelValues(service, handler, outcome).Inc()
	invocationTime.WithLabelValues(service, handler).Observe(took.Seconds())
	if recorded > 0 {
		effects.WithLabelValues(service, handler, "recorded").Add(float64(recorded))
	}
	if replayed > 0 {
		effects.WithLabelValues(service, handler, "replayed").Add(float64(replayed))
	}
}
