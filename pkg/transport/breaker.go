package transport

import (
	"sync"
	"time"
)

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	// StateClosed lets every attempt through.
	StateClosed BreakerState = iota
	// StateOpen rejects attempts until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets probe attempts through to test recovery.
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker stops sending to a host after consecutive failures.
// Safe for concurrent use.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	now              func() time.Time

	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
}

// NewBreaker creates a breaker that opens after failureThreshold consecutive
// failures, probes after cooldown and closes after successThreshold
// consecutive probe successes. Non-positive arguments fall back to 5, 2 and 30s.
func NewBreaker(failureThreshold, successThreshold int, cooldown time.Duration) *Breaker {
	// Conservative defaults tolerate a flapping host without stalling recovery
	if failureThreshold <= 0 {
		failureThreshold = 5 // Open after 5 consecutive failures
	}
	if successThreshold <= 0 {
		successThreshold = 2 // Two good probes before trusting the host again
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	return &Breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
		now:              time.Now,
	}
}

// Allow reports whether an attempt may proceed. An open breaker moves to
// half-open once the cooldown has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.lastFailure) < b.cooldown {
			return false
		}
		// Cooldown over: let attempts through to find out if the host recovered
		b.state = StateHalfOpen
		b.successes = 0
	}
	return true
}

// Success records a successful attempt.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		// Only consecutive failures count toward opening
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			// Host looks healthy again
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	}
}

// Failure records a failed attempt.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = b.now()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			// Threshold reached, stop sending to the failing host
			b.state = StateOpen
		}
	case StateHalfOpen:
		// A failed probe means the host has not recovered; restart the
		// cooldown from this failure
		b.state = StateOpen
		b.successes = 0
	}
}

// State returns the current state without triggering transitions.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Report what Allow would see
	if b.state == StateOpen && b.now().Sub(b.lastFailure) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}

// Reset closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	b.lastFailure = time.Time{}
}
