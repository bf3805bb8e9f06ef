package steamapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure returned by this package.
type Kind uint8

const (
	// KindParameter: malformed input detected before any network call.
	KindParameter Kind = iota + 1
	// KindHTTP: the endpoint answered with a non-2xx status.
	KindHTTP
	// KindParse: the response body did not match the expected structure.
	KindParse
	// KindQueryParameter: a query or form payload could not be encoded.
	KindQueryParameter
	// KindTransport: network failure, timeout, cancellation or retry exhaustion.
	KindTransport
	// KindResponse: a well-formed response carrying invalid values.
	KindResponse
	// KindNotLoggedIn: an operation needs a session and none is established.
	KindNotLoggedIn
)

func (k Kind) String() string {
	switch k {
	case KindParameter:
		return "parameter"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	case KindQueryParameter:
		return "query_parameter"
	case KindTransport:
		return "transport"
	case KindResponse:
		return "response"
	case KindNotLoggedIn:
		return "not_logged_in"
	default:
		return "unknown"
	}
}

// Error is the single error type crossing the package boundary.
// Branch on Kind (or errors.Is against the sentinels), never on the message.
type Error struct {
	Kind Kind
	// StatusCode is set for KindHTTP.
	StatusCode int
	// Reason is a short human-readable detail.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindHTTP:
		return fmt.Sprintf("steamapi: request failed with status code: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case e.Kind == KindNotLoggedIn:
		return "steamapi: not logged in"
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("steamapi: %s: %s: %v", e.Kind, e.Reason, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("steamapi: %s: %s", e.Kind, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("steamapi: %s: %v", e.Kind, e.Err)
	default:
		return "steamapi: " + e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target with a non-zero
// StatusCode additionally requires the same status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// Sentinels for errors.Is. ErrHTTP matches any status; build a status-specific
// target with &Error{Kind: KindHTTP, StatusCode: 403}.
var (
	ErrParameter      = &Error{Kind: KindParameter}
	ErrHTTP           = &Error{Kind: KindHTTP}
	ErrParse          = &Error{Kind: KindParse}
	ErrQueryParameter = &Error{Kind: KindQueryParameter}
	ErrTransport      = &Error{Kind: KindTransport}
	ErrResponse       = &Error{Kind: KindResponse}
	ErrNotLoggedIn    = &Error{Kind: KindNotLoggedIn}
)

// KindOf returns the kind of err, or zero if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindHTTP {
		return e.StatusCode
	}
	return 0
}

// One constructor per failure source. Every internal failure goes through
// exactly one of these at the point it occurs.

func parameterError(reason string, cause error) *Error {
	return &Error{Kind: KindParameter, Reason: reason, Err: cause}
}

func httpError(status int) *Error {
	return &Error{Kind: KindHTTP, StatusCode: status}
}

func parseError(reason string, cause error) *Error {
	return &Error{Kind: KindParse, Reason: reason, Err: cause}
}

func queryParameterError(cause error) *Error {
	return &Error{Kind: KindQueryParameter, Err: cause}
}

func transportError(cause error) *Error {
	return &Error{Kind: KindTransport, Err: cause}
}

func responseError(message string) *Error {
	return &Error{Kind: KindResponse, Reason: message}
}

func notLoggedInError() *Error {
	return &Error{Kind: KindNotLoggedIn}
}
