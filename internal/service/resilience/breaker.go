package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without attempting the call while the breaker is open.
var ErrCircuitOpen = errors.New("resilience: circuit open")

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// BreakerConfig holds circuit breaker thresholds.
type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	RecoveryTimeout  time.Duration
	HalfOpenMaxCalls int
}

// TransitionFunc observes state changes. Must not call back into the breaker.
type TransitionFunc func(name string, from, to State)

// Breaker is a per-dependency circuit breaker. All transitions happen under
// a single mutex so concurrent failures are counted exactly once.
type Breaker struct {
	name         string
	cfg          BreakerConfig
	onTransition TransitionFunc

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	inFlight    int
	lastFailure time.Time
}

// NewBreaker creates a closed breaker for one remote dependency.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	return &Breaker{name: name, cfg: cfg}
}

// WithTransitionHook registers a state change observer.
func (b *Breaker) WithTransitionHook(fn TransitionFunc) *Breaker {
	b.onTransition = fn
	return b
}

// Allow reserves permission for one attempt. In OPEN it fails fast until the
// recovery timeout elapses, then admits limited trial calls (HALF_OPEN).
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(b.lastFailure) < b.cfg.RecoveryTimeout {
			return ErrCircuitOpen
		}
		b.transition(StateHalfOpen)
		b.inFlight = 1
		return nil
	default: // StateHalfOpen
		if b.inFlight >= b.cfg.HalfOpenMaxCalls {
			return ErrCircuitOpen
		}
		b.inFlight++
		return nil
	}
}

// OnSuccess records a successful call.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		if b.inFlight > 0 {
			b.inFlight--
		}
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.transition(StateClosed)
		}
	}
}

// OnFailure records a failed call.
func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = time.Now()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		// A single trial failure reopens the circuit.
		b.transition(StateOpen)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// transition changes state and resets counters. Called with mu held.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.failures = 0
	b.successes = 0
	b.inFlight = 0
	if b.onTransition != nil {
		b.onTransition(b.name, from, to)
	}
}
