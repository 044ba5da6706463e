package model

import (
	"testing"
	"time"
)

func TestEndpointHealthTracking(t *testing.T) {
	r := NewDefaultRegistry()

	if !r.IsEndpointAvailable("qwen") {
		t.Error("expected qwen to be available initially")
	}
	if r.GetEndpointHealth("qwen") != nil {
		t.Error("expected no health info before any requests")
	}

	r.MarkEndpointSuccess("qwen")

	health := r.GetEndpointHealth("qwen")
	if health == nil {
		t.Fatal("expected health info after success")
	}
	if !health.Available || health.FailureCount != 0 || health.LastSuccess.IsZero() {
		t.Errorf("unexpected health after success: %+v", health)
	}
}

func TestCircuitBreaker(t *testing.T) {
	r := NewDefaultRegistry()
	r.SetHealthConfig(HealthConfig{FailureThreshold: 2, RecoveryTimeout: time.Minute})

	clock := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	r.health.now = func() time.Time { return clock }

	r.MarkEndpointFailure("qwen")
	if !r.IsEndpointAvailable("qwen") {
		t.Error("expected qwen to be available after 1 failure")
	}

	r.MarkEndpointFailure("qwen")
	if r.IsEndpointAvailable("qwen") {
		t.Error("expected circuit to open after 2 failures")
	}
	if h := r.GetEndpointHealth("qwen"); h == nil || !h.CircuitOpen {
		t.Errorf("expected open circuit, got %+v", h)
	}

	// half-open once the recovery timeout passes
	clock = clock.Add(2 * time.Minute)
	if !r.IsEndpointAvailable("qwen") {
		t.Error("expected half-open probe after recovery timeout")
	}

	r.MarkEndpointSuccess("qwen")
	if h := r.GetEndpointHealth("qwen"); h.CircuitOpen || h.FailureCount != 0 {
		t.Errorf("expected closed circuit after success, got %+v", h)
	}
}

func TestGetAvailableFallbackChain(t *testing.T) {
	r := NewDefaultRegistry()
	r.SetHealthConfig(HealthConfig{FailureThreshold: 1, RecoveryTimeout: time.Hour})

	r.MarkEndpointFailure("gpt-4o-mini")

	chain := r.GetAvailableFallbackChain(CapabilityItinerary)
	for _, name := range chain {
		if name == "gpt-4o-mini" {
			t.Fatalf("open endpoint still in chain: %v", chain)
		}
	}
	if chain[0] != "gemini-flash" {
		t.Errorf("chain[0] = %q, want gemini-flash", chain[0])
	}

	for _, name := range r.GetFallbackChain(CapabilityItinerary) {
		r.MarkEndpointFailure(name)
	}
	if got := r.GetAvailableFallbackChain(CapabilityItinerary); len(got) != 4 {
		t.Errorf("expected full chain when all circuits open, got %v", got)
	}
}

func TestResetEndpointHealth(t *testing.T) {
	r := NewDefaultRegistry()
	r.SetHealthConfig(HealthConfig{FailureThreshold: 1, RecoveryTimeout: time.Hour})

	r.MarkEndpointFailure("qwen")
	r.ResetEndpointHealth("qwen")

	if !r.IsEndpointAvailable("qwen") {
		t.Error("expected qwen available after reset")
	}
	if r.GetEndpointHealth("qwen") != nil {
		t.Error("expected health cleared after reset")
	}
}
