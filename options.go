package steamapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/juliarose/steam-api/pkg/transport"
)

// MetricsRecorder receives client instrumentation. pkg/metrics provides a
// Prometheus implementation.
type MetricsRecorder interface {
	ObserveAttempt(result transport.AttemptResult)
	ObserveAuthentication(result string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveAttempt(transport.AttemptResult) {}
func (noopMetrics) ObserveAuthentication(string) {}

type options struct {
	baseURL       string
	httpClient    *http.Client
	logger        *slog.Logger
	metrics       MetricsRecorder
	transportOpts []transport.Option
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at another host, e.g. a test server.
// Default is https://api.steampowered.com.
func WithBaseURL(rawURL string) Option {
	return func(o *options) {
		if rawURL != "" {
			o.baseURL = rawURL
		}
	}
}

// WithHTTPClient sets the underlying HTTP client. The client's cookie jar is
// replaced by the session store on a copy; the original is not modified.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return WithTransportOptions(transport.WithTimeout(d))
}

// WithMaxRetries sets how many times network failures and 5xx responses are
// retried. Zero disables retries.
func WithMaxRetries(n int) Option {
	return WithTransportOptions(transport.WithMaxRetries(n))
}

// WithBackoff sets the exponential backoff bounds between retries.
func WithBackoff(initial, max time.Duration) Option {
	return WithTransportOptions(transport.WithBackoff(initial, max))
}

// WithRateLimit caps outgoing attempts at rps per second.
func WithRateLimit(rps float64, burst int) Option {
	return WithTransportOptions(transport.WithRateLimit(rps, burst))
}

func WithCircuitBreaker(cb *transport.Breaker) Option {
	return WithTransportOptions(transport.WithCircuitBreaker(cb))
}

func WithUserAgent(ua string) Option {
	return WithTransportOptions(transport.WithUserAgent(ua))
}

// WithTransportOptions passes options straight to the transport.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *options) {
		o.transportOpts = append(o.transportOpts, opts...)
	}
}
