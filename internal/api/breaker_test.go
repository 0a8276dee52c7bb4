package api

import (
	"fmt"
	"testing"
	"time"
)

func TestBreakerBasicFlow(t *testing.T) {
	config := &BreakerConfig{
		MaxFailures:  3,
		ResetTimeout: 100 * time.Millisecond,
		MaxProbes:    2,
	}

	b := NewBreaker(config)

	if b.State() != BreakerClosed {
		t.Errorf("Expected initial state to be Closed, got %v", b.State())
	}

	err := b.Execute(func() error {
		return nil
	})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if b.State() != BreakerClosed {
		t.Errorf("Expected state to remain Closed after success, got %v", b.State())
	}
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	config := &BreakerConfig{
		MaxFailures:  2,
		ResetTimeout: 100 * time.Millisecond,
		MaxProbes:    2,
	}

	b := NewBreaker(config)

	err := b.Execute(func() error {
		return fmt.Errorf("upstream down")
	})
	if err == nil {
		t.Error("Expected error, got nil")
	}
	if b.State() != BreakerClosed {
		t.Errorf("Expected state to be Closed after first failure, got %v", b.State())
	}

	err = b.Execute(func() error {
		return fmt.Errorf("upstream still down")
	})
	if err == nil {
		t.Error("Expected error, got nil")
	}
	if b.State() != BreakerOpen {
		t.Errorf("Expected state to be Open at failure threshold, got %v", b.State())
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	config := &BreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 100 * time.Millisecond,
		MaxProbes:    2,
	}

	b := NewBreaker(config)

	b.Execute(func() error {
		return fmt.Errorf("failure")
	})

	if b.State() != BreakerOpen {
		t.Errorf("Expected state to be Open, got %v", b.State())
	}

	err := b.Execute(func() error {
		t.Error("Call should not run while the breaker is open")
		return nil
	})

	if err != ErrBreakerOpen {
		t.Errorf("Expected ErrBreakerOpen, got %v", err)
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	config := &BreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 20 * time.Millisecond,
		MaxProbes:    2,
	}

	b := NewBreaker(config)

	b.Execute(func() error {
		return fmt.Errorf("failure")
	})

	time.Sleep(30 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("Expected probe %d to be allowed, got %v", i, err)
		}
	}

	if b.State() != BreakerClosed {
		t.Errorf("Expected state to be Closed after successful probes, got %v", b.State())
	}
}

func TestBreakerReopensOnProbeFailure(t *testing.T) {
	config := &BreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 20 * time.Millisecond,
		MaxProbes:    3,
	}

	b := NewBreaker(config)

	b.Execute(func() error {
		return fmt.Errorf("failure")
	})

	time.Sleep(30 * time.Millisecond)

	b.Execute(func() error { return nil })
	if b.State() != BreakerHalfOpen {
		t.Fatalf("Expected state to be HalfOpen, got %v", b.State())
	}

	b.Execute(func() error {
		return fmt.Errorf("probe failed")
	})

	if b.State() != BreakerOpen {
		t.Errorf("Expected state to be Open after probe failure, got %v", b.State())
	}
}

func TestBreakerIgnoresRejections(t *testing.T) {
	config := &BreakerConfig{
		MaxFailures:  2,
		ResetTimeout: 100 * time.Millisecond,
		MaxProbes:    2,
	}

	b := NewBreaker(config)

	for i := 0; i < 10; i++ {
		err := b.Execute(func() error {
			return &StatusError{Code: 401}
		})
		if err == nil {
			t.Fatal("Expected the rejection to be returned to the caller")
		}
	}

	if b.State() != BreakerClosed {
		t.Errorf("Expected state to stay Closed through a 4xx burst, got %v", b.State())
	}

	for i := 0; i < 2; i++ {
		b.Execute(func() error {
			return &StatusError{Code: 502}
		})
	}

	if b.State() != BreakerOpen {
		t.Errorf("Expected 5xx responses to open the breaker, got %v", b.State())
	}
}

func TestBreakerProbeClosedByRejection(t *testing.T) {
	config := &BreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 20 * time.Millisecond,
		MaxProbes:    2,
	}

	b := NewBreaker(config)

	b.Execute(func() error {
		return &StatusError{Code: 500}
	})
	if b.State() != BreakerOpen {
		t.Fatalf("Expected state to be Open, got %v", b.State())
	}

	time.Sleep(30 * time.Millisecond)

	// A 404 probe proves the backend is answering again.
	b.Execute(func() error { return &StatusError{Code: 404} })
	b.Execute(func() error { return &StatusError{Code: 404} })

	if b.State() != BreakerClosed {
		t.Errorf("Expected a rejecting probe to close the breaker, got %v", b.State())
	}
}

func TestBreakerStats(t *testing.T) {
	b := NewBreaker(nil)

	stats := b.Stats()
	if stats["state"] != "closed" {
		t.Errorf("Expected state closed, got %v", stats["state"])
	}
	if stats["max_failures"] != 5 {
		t.Errorf("Expected default max_failures 5, got %v", stats["max_failures"])
	}
}
