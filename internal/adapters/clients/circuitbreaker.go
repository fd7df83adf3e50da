package clients

import (
	"sync"
	"time"
)

// State is the position of a CircuitBreaker.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen blocks requests until the cool-down elapses.
	StateOpen

	// StateHalfOpen admits a bounded number of probe requests.
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

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int

	// Timeout is the cool-down spent open before probing.
	Timeout time.Duration

	// HalfOpenLimit bounds in-flight probes and is also the number of
	// consecutive probe successes that closes the circuit.
	HalfOpenLimit int
}

// Counts is a point-in-time view of the breaker counters.
type Counts struct {
	State               State
	ConsecutiveFailures int
	ProbeSuccesses      int
	ProbesInFlight      int
}

// CircuitBreaker guards the Bot API from being hammered while it is failing.
// The poller backs off on errors already; the breaker additionally stops
// replies from piling onto an outage.
//
//	closed    -> open       MaxFailures consecutive failures
//	open      -> half-open  Timeout elapsed since the last failure
//	half-open -> closed     HalfOpenLimit consecutive probe successes
//	half-open -> open       any probe failure
type CircuitBreaker struct {
	mu          sync.RWMutex
	cfg         CircuitBreakerConfig
	counts      Counts
	lastFailure time.Time

	onStateChange func(from, to State)
	now           func() time.Time
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 1
	}

	if cfg.HalfOpenLimit <= 0 {
		cfg.HalfOpenLimit = 1
	}

	return &CircuitBreaker{
		cfg: cfg,
		now: time.Now,
	}
}

// OnStateChange registers fn to be called asynchronously on every transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.onStateChange = fn
}

// Allow reports whether a request may proceed. An open breaker whose
// cool-down has elapsed moves to half-open and admits the caller as a probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.counts.State {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) < cb.cfg.Timeout {
			return false
		}

		cb.setState(StateHalfOpen)
		cb.counts.ProbesInFlight = 1

		return true
	case StateHalfOpen:
		if cb.counts.ProbesInFlight >= cb.cfg.HalfOpenLimit {
			return false
		}

		cb.counts.ProbesInFlight++

		return true
	default:
		return false
	}
}

// RecordSuccess reports a request that reached the downstream service.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.counts.State {
	case StateClosed:
		cb.counts.ConsecutiveFailures = 0
	case StateHalfOpen:
		cb.releaseProbe()
		cb.counts.ProbeSuccesses++

		if cb.counts.ProbeSuccesses >= cb.cfg.HalfOpenLimit {
			cb.setState(StateClosed)
		}
	}
}

// RecordFailure reports a failed request.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = cb.now()

	switch cb.counts.State {
	case StateClosed:
		cb.counts.ConsecutiveFailures++

		if cb.counts.ConsecutiveFailures >= cb.cfg.MaxFailures {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.releaseProbe()
		cb.setState(StateOpen)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.counts.State
}

// Counts returns a copy of the current counters.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.counts
}

func (cb *CircuitBreaker) releaseProbe() {
	if cb.counts.ProbesInFlight > 0 {
		cb.counts.ProbesInFlight--
	}
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(to State) {
	from := cb.counts.State
	if from == to {
		return
	}

	cb.counts = Counts{State: to, ProbesInFlight: cb.counts.ProbesInFlight}
	if to != StateHalfOpen {
		cb.counts.ProbesInFlight = 0
	}

	if cb.onStateChange != nil {
		go cb.onStateChange(from, to)
	}
}
