package circuitbreaker

import (
	"fmt"
	"sync"
	"time"
)

type Settings struct {
	Name             string
	FailureThreshold int
	Interval         time.Duration
	Timeout          time.Duration
}

// CircuitBreaker trips open after consecutive failures and probes the
// dependency again once the timeout elapses.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	interval         time.Duration
	timeout          time.Duration
	failures         int
	lastFailure      time.Time
	state            string
	mu               sync.RWMutex
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:             settings.Name,
		failureThreshold: settings.FailureThreshold,
		interval:         settings.Interval,
		timeout:          settings.Timeout,
		state:            "closed",
	}
}

// Execute runs fn unless the breaker is open. An open breaker transitions
// to half-open after the timeout and lets a single probe through.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.RLock()
	if cb.state == "open" {
		if time.Since(cb.lastFailure) > cb.timeout {
			cb.mu.RUnlock()
			cb.mu.Lock()
			cb.state = "half-open"
			cb.mu.Unlock()
		} else {
			cb.mu.RUnlock()
			return fmt.Errorf("circuit breaker %s is open", cb.name)
		}
	} else {
		cb.mu.RUnlock()
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.failureThreshold {
			cb.state = "open"
		}
		return err
	}

	if cb.state == "half-open" {
		cb.state = "closed"
	}
	cb.failures = 0
	return nil
}

// State reports the current breaker state for health endpoints.
func (cb *CircuitBreaker) State() string {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}
