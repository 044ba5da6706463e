package model

import (
	"encoding/json"
	"testing"
)

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	caps := r.ListCapabilities()
	if len(caps) != 2 {
		t.Fatalf("expected 2 capabilities, got %d", len(caps))
	}
	if caps[0] != CapabilityFast || caps[1] != CapabilityItinerary {
		t.Errorf("unexpected capability order: %v", caps)
	}

	// every endpoint named in a chain must be configured
	for _, c := range caps {
		for _, name := range r.GetFallbackChain(c) {
			if r.GetEndpoint(name) == nil {
				t.Errorf("capability %s references missing endpoint %q", c, name)
			}
		}
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		capability Capability
		expected   string
	}{
		{CapabilityItinerary, "gpt-4o-mini"},
		{CapabilityFast, "gemini-flash"},
		{Capability("unknown"), "qwen"},
	}

	for _, tt := range tests {
		t.Run(string(tt.capability), func(t *testing.T) {
			if got := r.Resolve(tt.capability); got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.capability, got, tt.expected)
			}
		})
	}
}

func TestRegistryGetFallbackChain(t *testing.T) {
	r := NewDefaultRegistry()

	chain := r.GetFallbackChain(CapabilityItinerary)
	want := []string{"gpt-4o-mini", "gemini-flash", "claude-haiku", "qwen"}
	if len(chain) != len(want) {
		t.Fatalf("chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Errorf("chain[%d] = %q, want %q", i, chain[i], want[i])
		}
	}

	if got := r.GetFallbackChain("missing"); len(got) != 1 || got[0] != "qwen" {
		t.Errorf("unknown capability chain = %v, want [qwen]", got)
	}
}

func TestRegistrySetters(t *testing.T) {
	r := NewRegistry(nil, nil)

	r.SetEndpoint("local", &EndpointConfig{Provider: "ollama", Model: "llama3.2"})
	r.SetCapability(CapabilityItinerary, &CapabilityConfig{Preferred: []string{"local"}})
	r.SetDefault("local")

	if got := r.Resolve(CapabilityItinerary); got != "local" {
		t.Errorf("Resolve = %q, want local", got)
	}
	if got := r.Resolve(CapabilityFast); got != "local" {
		t.Errorf("Resolve default = %q, want local", got)
	}
	if ep := r.GetEndpoint("local"); ep == nil || ep.Model != "llama3.2" {
		t.Errorf("GetEndpoint(local) = %+v", ep)
	}
	if names := r.ListEndpoints(); len(names) != 1 || names[0] != "local" {
		t.Errorf("ListEndpoints = %v", names)
	}
}

func TestRegistryMarshalJSON(t *testing.T) {
	r := NewDefaultRegistry()

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded RegistryConfig
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded.Capabilities["itinerary"]; !ok {
		t.Error("expected itinerary capability in JSON")
	}
	if decoded.Defaults == nil || decoded.Defaults.Model != "qwen" {
		t.Errorf("defaults = %+v", decoded.Defaults)
	}
}

func TestParseCapability(t *testing.T) {
	tests := []struct {
		in   string
		want Capability
	}{
		{"itinerary", CapabilityItinerary},
		{"fast", CapabilityFast},
		{"planning", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseCapability(tt.in); got != tt.want {
			t.Errorf("ParseCapability(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
