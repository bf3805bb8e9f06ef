package cookiejar

import "errors"

var (
	ErrInvalidURL = errors.New("cookiejar.invalid_url")
	ErrNoHost     = errors.New("cookiejar.no_host")
)
