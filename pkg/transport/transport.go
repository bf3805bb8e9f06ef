package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/juliarose/steam-api/pkg/logger"
)

const (
	defaultUserAgent = "steam-api-go/1.0"

	// maxResponseBytes bounds how much of a response body is buffered.
	maxResponseBytes = 1 << 20
)

// Request is an immutable description of one logical call. The body is
// replayed from the byte slice on every attempt.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Header      http.Header
}

// Response is the final response of a call with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Success reports whether the status code is 2xx.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client sends requests with retries on network errors and 5xx responses.
// Zero value is not usable; use New to create instances.
type Client struct {
	httpClient *http.Client
	jar        http.CookieJar

	timeout         time.Duration
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	jitterPercent   uint64

	limiter   *rate.Limiter
	breaker   *Breaker
	userAgent string
	logger    *slog.Logger
	hooks     []AttemptHook
}

// New creates a transport client. Without WithHTTPClient it uses a pooled
// client from go-cleanhttp.
func New(opts ...Option) *Client {
	c := &Client{
		timeout:         30 * time.Second,
		maxRetries:      3,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     10 * time.Second,
		jitterPercent:   10,
		userAgent:       defaultUserAgent,
		logger:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = cleanhttp.DefaultPooledClient()
	} else {
		// Copy so attaching the jar never mutates the caller's client.
		hc := *c.httpClient
		c.httpClient = &hc
	}
	if c.jar != nil {
		c.httpClient.Jar = c.jar
	}

	return c
}

// Do sends req, retrying network failures and 5xx responses with exponential
// backoff. Any final HTTP status is returned as a Response; an error is
// returned only when no usable response was obtained.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target, err := req.validate()
	if err != nil {
		return nil, err
	}

	var (
		last     *Response
		attempts int
	)

	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempts++

		// An open breaker ends the call; retrying would only hit it again
		if c.breaker != nil && !c.breaker.Allow() {
			return ErrCircuitOpen
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%w: %w", ErrRateLimited, err)
			}
		}

		resp, result := c.attempt(ctx, target, req)
		result.Attempt = attempts
		c.observe(ctx, result)

		switch {
		case errors.Is(result.Err, ErrInvalidRequest):
			// Retrying cannot fix a request that never left the client.
			return result.Err
		case errors.Is(result.Err, ErrBodyRead), errors.Is(result.Err, ErrResponseTooLarge):
			// The server processed the request; a resend of a non-idempotent
			// call would run it twice.
			c.recordFailure()
			return result.Err
		case result.Err != nil:
			// Nothing usable arrived, so the attempt is resent.
			c.recordFailure()
			return retry.RetryableError(result.Err)
		case resp.StatusCode >= http.StatusInternalServerError:
			// Keep the response so exhausted retries still surface the status.
			c.recordFailure()
			last = resp
			return retry.RetryableError(errServerStatus)
		}

		c.recordSuccess()
		last = resp
		return nil
	})

	switch {
	case err == nil:
		return last, nil
	case errors.Is(err, errServerStatus) && last != nil:
		// Retries spent on 5xx: hand the final response to the caller.
		return last, nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		// Cancellation is the caller's decision, not an exhausted retry budget
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrCircuitOpen), errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrBodyRead), errors.Is(err, ErrResponseTooLarge):
		return nil, err
	default:
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
	}
}

// attempt performs one HTTP round trip and buffers the response body.
func (c *Client) attempt(ctx context.Context, target *url.URL, req Request) (*Response, AttemptResult) {
	result := AttemptResult{Endpoint: target.Path}
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, req.method(), target.String(), bytes.NewReader(req.Body))
	if err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		return nil, result
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		result.Duration = time.Since(start)
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			result.Err = fmt.Errorf("%w: %w", ErrTimeout, err)
		} else {
			result.Err = fmt.Errorf("%w: %w", ErrRequestFailed, err)
		}
		return nil, result
	}
	defer func() { _ = resp.Body.Close() }()

	// One byte past the limit distinguishes an oversized body from one that
	// is exactly maxResponseBytes long.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	result.Duration = time.Since(start)
	result.StatusCode = resp.StatusCode
	serverError := resp.StatusCode >= http.StatusInternalServerError
	switch {
	case err != nil && serverError:
		// A broken 5xx body is as retryable as the 5xx itself.
		result.Err = fmt.Errorf("%w: read body: %w", ErrRequestFailed, err)
		return nil, result
	case err != nil:
		result.Err = fmt.Errorf("%w: status %d: %w", ErrBodyRead, resp.StatusCode, err)
		return nil, result
	case len(body) > maxResponseBytes:
		result.Err = fmt.Errorf("%w: status %d: more than %d bytes", ErrResponseTooLarge, resp.StatusCode, maxResponseBytes)
		return nil, result
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, result
}

// backoff builds a fresh policy per call since go-retry backoffs are stateful.
func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.initialInterval)
	if c.jitterPercent > 0 {
		b = retry.WithJitterPercent(c.jitterPercent, b)
	}
	b = retry.WithCappedDuration(c.maxInterval, b)
	return retry.WithMaxRetries(c.maxRetries, b)
}

func (c *Client) observe(ctx context.Context, result AttemptResult) {
	attrs := []slog.Attr{
		logger.Endpoint(result.Endpoint),
		logger.Attempt(result.Attempt),
		logger.StatusCode(result.StatusCode),
		logger.Duration(result.Duration),
	}
	if result.Err != nil || result.StatusCode >= http.StatusInternalServerError {
		attrs = append(attrs, logger.Error(result.Err))
		c.logger.LogAttrs(ctx, slog.LevelWarn, "transport attempt failed", attrs...)
	} else {
		c.logger.LogAttrs(ctx, slog.LevelDebug, "transport attempt", attrs...)
	}

	for _, hook := range c.hooks {
		hook(result)
	}
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.Failure()
	}
}

func (c *Client) recordSuccess() {
	if c.breaker != nil {
		c.breaker.Success()
	}
}

func (r Request) method() string {
	if r.Method != "" {
		return r.Method
	}
	if len(r.Body) > 0 {
		return http.MethodPost
	}
	return http.MethodGet
}

func (r Request) validate() (*url.URL, error) {
	if r.URL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidRequest)
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidRequest)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidRequest)
	}
	return u, nil
}
