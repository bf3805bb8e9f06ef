package metrics

import "github.com/juliarose/steam-api/pkg/transport"

// NoopRecorder discards all observations.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (*NoopRecorder) ObserveAttempt(transport.AttemptResult) {}

func (*NoopRecorder) ObserveAuthentication(string) {}
