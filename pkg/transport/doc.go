// Package transport sends HTTP requests with retry middleware, an optional
// circuit breaker and an optional client-side rate limit.
//
// It is a low-level building block: it knows nothing about response formats.
// Do returns the final response with its body fully buffered, or an error
// when no response could be obtained at all.
//
// # Retry Logic
//
// Attempts are driven by github.com/sethvargo/go-retry using exponential
// backoff with jitter and a capped interval. Only these are retried:
//
//   - network errors (connection refused, DNS, TLS, resets)
//   - per-attempt timeouts
//   - 5xx responses
//
// Any other status, 4xx included, ends the call immediately. When retries on
// 5xx are spent, the last 5xx response is returned without an error so the
// caller can classify it. The body of every attempt is read inside the
// attempt, so callers never see a partially consumed response and decoding
// failures are never retried.
//
// Once a non-5xx status has arrived the server has acted on the request. A
// body that then fails to read (ErrBodyRead) or exceeds 1 MiB
// (ErrResponseTooLarge) ends the call without another attempt.
//
// # Cookies
//
// WithJar attaches an http.CookieJar to the underlying client. Every attempt
// sends the jar's cookies and every response's Set-Cookie headers are stored
// back into it.
//
// # Usage
//
//	client := transport.New(
//	    transport.WithJar(store),
//	    transport.WithMaxRetries(3),
//	    transport.WithBackoff(500*time.Millisecond, 10*time.Second),
//	    transport.WithCircuitBreaker(transport.NewBreaker(5, 2, 30*time.Second)),
//	    transport.WithRateLimit(10, 5),
//	)
//
//	resp, err := client.Do(ctx, transport.Request{
//	    Method:      http.MethodPost,
//	    URL:         "https://api.steampowered.com/ISteamUserAuth/AuthenticateUser/v1",
//	    Body:        body,
//	    ContentType: "application/x-www-form-urlencoded",
//	})
//
// # Errors
//
// ErrRequestFailed wraps network failures and context cancellation,
// ErrRetriesExhausted wraps the last network failure after all attempts,
// ErrCircuitOpen, ErrRateLimited, ErrBodyRead and ErrResponseTooLarge are
// returned without retrying.
package transport
