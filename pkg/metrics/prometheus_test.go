package metrics_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliarose/steam-api/pkg/metrics"
	"github.com/juliarose/steam-api/pkg/transport"
)

const endpoint = "/ISteamUserAuth/AuthenticateUser/v1"

func TestPrometheusRecorder_ObserveAttempt(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorderWithRegistry(reg)

	rec.ObserveAttempt(transport.AttemptResult{Endpoint: endpoint, StatusCode: http.StatusOK, Duration: 10 * time.Millisecond})
	rec.ObserveAttempt(transport.AttemptResult{Endpoint: endpoint, StatusCode: http.StatusBadGateway})
	rec.ObserveAttempt(transport.AttemptResult{Endpoint: endpoint, StatusCode: http.StatusBadGateway})
	rec.ObserveAttempt(transport.AttemptResult{Endpoint: endpoint, Err: errors.New("dial tcp: refused")})

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2, "authentications_total has no series yet")

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "steamapi_http_attempts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "result" {
					counts[lp.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}

	assert.Equal(t, float64(1), counts[metrics.ResultSuccess])
	assert.Equal(t, float64(2), counts[metrics.ResultHTTPError])
	assert.Equal(t, float64(1), counts[metrics.ResultNetworkError])
}

func TestPrometheusRecorder_ObserveAuthentication(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorderWithRegistry(reg)

	rec.ObserveAuthentication("success")
	rec.ObserveAuthentication("success")
	rec.ObserveAuthentication("http")

	n, err := testutil.GatherAndCount(reg, "steamapi_authentications_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per result label")
}

func TestPrometheusRecorder_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_ = metrics.NewPrometheusRecorderWithRegistry(reg)

	assert.Panics(t, func() {
		_ = metrics.NewPrometheusRecorderWithRegistry(reg)
	})
}

func TestNoopRecorder(t *testing.T) {
	t.Parallel()

	rec := metrics.NewNoopRecorder()
	assert.NotPanics(t, func() {
		rec.ObserveAttempt(transport.AttemptResult{})
		rec.ObserveAuthentication("success")
	})
}
