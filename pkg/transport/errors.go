package transport

import "errors"

// Errors returned by Client.Do. Non-2xx responses are not errors at this
// layer; they are returned as a Response for the caller to classify.
var (
	ErrInvalidRequest   = errors.New("invalid transport request")
	ErrRequestFailed    = errors.New("transport request failed")
	ErrRetriesExhausted = errors.New("transport retries exhausted")
	ErrCircuitOpen      = errors.New("transport circuit breaker is open")
	ErrRateLimited      = errors.New("transport rate limiter wait failed")
	ErrTimeout          = errors.New("transport request timeout")

	// ErrBodyRead and ErrResponseTooLarge are final: the server has already
	// answered, so sending the request again could repeat its side effects.
	ErrBodyRead         = errors.New("transport response body read failed")
	ErrResponseTooLarge = errors.New("transport response body too large")
)

// errServerStatus marks a 5xx attempt as retryable inside the retry loop.
// It never escapes Do.
var errServerStatus = errors.New("server error status")
