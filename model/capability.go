// Package model provides capability-based model selection.
// Callers ask for a capability ("itinerary", "fast") and the registry
// resolves it to configured endpoints with a fallback chain.
package model

// Capability names what a call needs from a model rather than which model to use.
type Capability string

const (
	// CapabilityItinerary is for trip planning with tool calling.
	// Endpoints listed here must support function calls.
	CapabilityItinerary Capability = "itinerary"

	// CapabilityFast is for cheap, low-latency calls such as smoke tests.
	CapabilityFast Capability = "fast"
)

// IsValid reports whether c is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityItinerary, CapabilityFast:
		return true
	}
	return false
}

func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for unknown values.
func ParseCapability(s string) Capability {
	c := Capability(s)
	if c.IsValid() {
		return c
	}
	return ""
}
