// Package metrics exposes Prometheus instrumentation for the API client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/juliarose/steam-api/pkg/transport"
)

const namespace = "steamapi"

// Attempt result label values.
const (
	ResultSuccess      = "success"
	ResultHTTPError    = "http_error"
	ResultNetworkError = "network_error"
)

// PrometheusRecorder records transport attempts and authentication outcomes.
type PrometheusRecorder struct {
	attemptsTotal   *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	authTotal       *prometheus.CounterVec
}

// NewPrometheusRecorder registers the collectors on the default registerer.
func NewPrometheusRecorder() *PrometheusRecorder {
	return NewPrometheusRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusRecorderWithRegistry registers the collectors on reg.
// Panics if they are already registered there.
func NewPrometheusRecorderWithRegistry(reg prometheus.Registerer) *PrometheusRecorder {
	attemptsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_attempts_total",
		Help:      "Total HTTP attempts, including retries",
	}, []string{"endpoint", "result"})

	attemptDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_attempt_duration_seconds",
		Help:      "Duration of individual HTTP attempts",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	authTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentications_total",
		Help:      "Total AuthenticateUser calls by outcome",
	}, []string{"result"})

	reg.MustRegister(attemptsTotal, attemptDuration, authTotal)

	return &PrometheusRecorder{
		attemptsTotal:   attemptsTotal,
		attemptDuration: attemptDuration,
		authTotal:       authTotal,
	}
}

// ObserveAttempt records one transport attempt. It matches transport.AttemptHook.
func (p *PrometheusRecorder) ObserveAttempt(result transport.AttemptResult) {
	p.attemptsTotal.WithLabelValues(result.Endpoint, attemptResult(result)).Inc()
	p.attemptDuration.WithLabelValues(result.Endpoint).Observe(result.Duration.Seconds())
}

// ObserveAuthentication records the outcome of one authentication call,
// "success" or the failure kind.
func (p *PrometheusRecorder) ObserveAuthentication(result string) {
	p.authTotal.WithLabelValues(result).Inc()
}

func attemptResult(r transport.AttemptResult) string {
	switch {
	case r.Err != nil:
		return ResultNetworkError
	case r.Success():
		return ResultSuccess
	default:
		return ResultHTTPError
	}
}
