// Package circuitbreaker stops calling a backend that keeps failing and lets a
// single probe through once the cooldown has passed.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrOpen is returned without calling through while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

type Settings struct {
	Name string
	// MaxFailures consecutive failures open the breaker.
	MaxFailures int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// IsFailure decides which errors count. Every non-nil error by default.
	IsFailure func(error) bool
	Now       func() time.Time
}

type CircuitBreaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration
	isFailure   func(error) bool
	now         func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:        settings.Name,
		maxFailures: settings.MaxFailures,
		cooldown:    settings.Cooldown,
		isFailure:   settings.IsFailure,
		now:         settings.Now,
	}
	if cb.maxFailures <= 0 {
		cb.maxFailures = 5
	}
	if cb.cooldown <= 0 {
		cb.cooldown = 30 * time.Second
	}
	if cb.isFailure == nil {
		cb.isFailure = func(err error) bool { return err != nil }
	}
	if cb.now == nil {
		cb.now = time.Now
	}
	return cb
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State reports the current state, moving an expired open breaker to
// half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()
	return cb.state
}

// Execute runs fn unless the breaker is open. While half-open only one probe
// runs at a time; its outcome closes or re-opens the breaker.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	cb.advance()
	switch {
	case cb.state == Open:
		cb.mu.Unlock()
		return ErrOpen
	case cb.state == HalfOpen && cb.probing:
		cb.mu.Unlock()
		return ErrOpen
	case cb.state == HalfOpen:
		cb.probing = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false
	if cb.isFailure(err) {
		cb.failures++
		if cb.state == HalfOpen || cb.failures >= cb.maxFailures {
			cb.state = Open
			cb.openedAt = cb.now()
		}
		return err
	}
	cb.state = Closed
	cb.failures = 0
	return err
}

func (cb *CircuitBreaker) advance() {
	if cb.state == Open && cb.now().Sub(cb.openedAt) >= cb.cooldown {
		cb.state = HalfOpen
	}
}
