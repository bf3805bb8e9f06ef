package transport

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// AttemptResult describes a single HTTP attempt made by Do.
type AttemptResult struct {
	Endpoint   string
	Attempt    int
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Success reports whether the attempt produced a 2xx response.
func (r AttemptResult) Success() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// AttemptHook is called after every attempt, including retried ones.
type AttemptHook func(result AttemptResult)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default client. The jar set via WithJar
// is still attached to it.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithJar attaches a cookie jar. Every request sends its cookies and every
// response's Set-Cookie headers are stored in it.
func WithJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

// WithTimeout sets the per-attempt timeout. Default is 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxRetries sets how many times a failed attempt is retried.
// Default is 3. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = uint64(n)
		}
	}
}

// WithNoRetry disables retries.
func WithNoRetry() Option {
	return WithMaxRetries(0)
}

// WithBackoff sets the exponential backoff bounds. Non-positive values keep
// the defaults.
func WithBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		if initial > 0 {
			c.initialInterval = initial
		}
		if max > 0 {
			c.maxInterval = max
		}
	}
}

// WithJitterPercent sets the backoff jitter as a percentage of the interval.
func WithJitterPercent(percent uint64) Option {
	return func(c *Client) {
		c.jitterPercent = percent
	}
}

// WithRateLimit limits attempts to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCircuitBreaker guards the remote host with cb.
// Reuse one breaker per host to track failure state across requests.
func WithCircuitBreaker(cb *Breaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnAttempt registers a hook invoked after each attempt.
func WithOnAttempt(hook AttemptHook) Option {
	return func(c *Client) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}
