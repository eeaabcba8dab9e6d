package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by Allow while the breaker denies calls.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
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

// Breaker is a per-dependency circuit breaker. It opens after a number of
// consecutive transient failures, denies calls for openDuration, then lets
// exactly one probe through; the probe's outcome closes or reopens it.
//
// One Breaker instance is shared by all concurrent callers of the same
// dependency and must never be shared across dependencies.
type Breaker struct {
	name             string
	failureThreshold int
	openDuration     time.Duration

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	lastFailureAt       time.Time
	openedAt            time.Time
	probeInFlight       bool
}

// NewBreaker creates a breaker for one named dependency.
func NewBreaker(name string, failureThreshold int, openDuration time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if openDuration <= 0 {
		openDuration = 30 * time.Second
	}
	return &Breaker{
		name:             name,
		failureThreshold: failureThreshold,
		openDuration:     openDuration,
		state:            StateClosed,
	}
}

// Allow reports whether a call may proceed. The check and the transition
// to half-open happen under one lock so concurrent callers cannot both
// claim the single probe slot.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(b.openedAt) < b.openDuration {
			return ErrBreakerOpen
		}
		// Cooldown elapsed: move to half-open and claim the probe slot.
		b.state = StateHalfOpen
		b.probeInFlight = true
		return nil
	case StateHalfOpen:
		if b.probeInFlight {
			return ErrBreakerOpen
		}
		b.probeInFlight = true
		return nil
	}
	return nil
}

// RecordSuccess records a successful call. A successful probe closes the
// breaker; in the closed state it resets the consecutive failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	b.probeInFlight = false
	if b.state == StateHalfOpen {
		b.state = StateClosed
	}
}

// ReleaseProbe returns a claimed probe slot without recording an
// outcome. Callers use it when a call granted by Allow never reached
// the dependency (caller cancellation, local encoding error): the
// breaker stays half-open and the next Allow may claim the slot again.
func (b *Breaker) ReleaseProbe() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probeInFlight = false
}

// RecordFailure records a transient failure. A failed probe reopens the
// breaker and restarts the cooldown; in the closed state the breaker opens
// once the threshold of consecutive failures is reached.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	b.lastFailureAt = time.Now()

	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = time.Now()
		b.probeInFlight = false
	case StateClosed:
		if b.consecutiveFailures >= b.failureThreshold {
			b.state = StateOpen
			b.openedAt = time.Now()
		}
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Name returns the dependency name the breaker guards.
func (b *Breaker) Name() string {
	return b.name
}
