package api

import (
	"errors"
	"sync"
	"time"
)

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

var ErrBreakerOpen = errors.New("upstream circuit breaker is open")

// Breaker fails fast when the upstream API keeps erroring. Only transport
// failures and 5xx responses trip it: a 4xx is the backend answering
// normally, so bursts of bad logins or invalid saves leave it closed. It is
// not a retry policy: a failed call is reported to the caller either way.
type Breaker struct {
	mu          sync.RWMutex
	state       BreakerState
	failures    int
	probes      int
	lastFailure time.Time

	maxFailures  int
	resetTimeout time.Duration
	maxProbes    int
}

type BreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
	MaxProbes    int
}

func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		MaxFailures:  5,
		ResetTimeout: 30 * time.Second,
		MaxProbes:    3,
	}
}

func NewBreaker(config *BreakerConfig) *Breaker {
	if config == nil {
		config = DefaultBreakerConfig()
	}

	return &Breaker{
		state:        BreakerClosed,
		maxFailures:  config.MaxFailures,
		resetTimeout: config.ResetTimeout,
		maxProbes:    config.MaxProbes,
	}
}

func (b *Breaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrBreakerOpen
	}

	err := fn()
	if trips(err) {
		b.recordFailure()
		return err
	}

	b.recordSuccess()
	return err
}

// trips reports whether an error counts against the breaker. Status codes
// below 500 mean the backend processed the request and rejected it, which
// says nothing about its health.
func trips(err error) bool {
	if err == nil {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Code >= 500
	}
	return true
}

func (b *Breaker) allow() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		return time.Since(b.lastFailure) >= b.resetTimeout
	case BreakerHalfOpen:
		return b.probes < b.maxProbes
	default:
		return false
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = time.Now()

	switch b.state {
	case BreakerClosed:
		if b.failures >= b.maxFailures {
			b.state = BreakerOpen
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.probes = 0
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.probes++
		if b.probes >= b.maxProbes {
			b.state = BreakerClosed
			b.failures = 0
			b.probes = 0
		}
	case BreakerOpen:
		if time.Since(b.lastFailure) >= b.resetTimeout {
			b.state = BreakerHalfOpen
			b.probes = 1
		}
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Breaker) Stats() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stateName := "closed"
	switch b.state {
	case BreakerOpen:
		stateName = "open"
	case BreakerHalfOpen:
		stateName = "half-open"
	}

	return map[string]interface{}{
		"state":         stateName,
		"failure_count": b.failures,
		"probe_count":   b.probes,
		"last_failure":  b.lastFailure.Unix(),
		"max_failures":  b.maxFailures,
		"reset_seconds": b.resetTimeout.Seconds(),
	}
}
