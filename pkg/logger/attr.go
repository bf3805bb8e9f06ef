package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Error records err under "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RequestID records a correlation id under "request_id". Empty ids produce an
// empty Attr.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// SteamID records a 64-bit account id under "steamid" as a decimal string,
// since JSON consumers lose precision on integers above 2^53.
func SteamID(id uint64) slog.Attr {
	return slog.String("steamid", strconv.FormatUint(id, 10))
}

func Endpoint(path string) slog.Attr {
	return slog.String("endpoint", path)
}

func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// StatusCode records an HTTP status under "status". Zero (no response)
// produces an empty Attr.
func StatusCode(code int) slog.Attr {
	if code == 0 {
		return slog.Attr{}
	}
	return slog.Int("status", code)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// ErrorKind records a classified failure kind under "error_kind".
func ErrorKind(kind string) slog.Attr {
	return slog.String("error_kind", kind)
}
