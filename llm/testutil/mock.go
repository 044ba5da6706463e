// Package testutil provides test doubles for code that talks to llm.Client.
package testutil

import (
	"context"
	"sync"

	"github.com/c360studio/tripplanner/llm"
)

// MockLLMClient is a thread-safe stand-in for llm.Client.
// Responses are returned in order; once exhausted the last one repeats.
//
//	mock := &testutil.MockLLMClient{
//	    Responses: []*llm.Response{{
//	        ToolCalls: []llm.ToolCall{testutil.LocationCall("Louvre", 48.8606, 2.3376, 1)},
//	    }},
//	}
type MockLLMClient struct {
	Responses []*llm.Response
	Err       error // takes precedence over Responses

	mu       sync.Mutex
	requests []llm.Request
	ctx      context.Context
}

// Complete records the request and returns the next configured response.
func (m *MockLLMClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ctx = ctx
	m.requests = append(m.requests, req)

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return &llm.Response{Model: "test-model"}, nil
	}

	idx := len(m.requests) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// Requests returns a copy of every request seen so far.
func (m *MockLLMClient) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Request(nil), m.requests...)
}

// CallCount returns the number of Complete calls.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// CapturedContext returns the context of the last Complete call.
func (m *MockLLMClient) CapturedContext() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx
}

// Reset clears recorded calls.
func (m *MockLLMClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.ctx = nil
}

// LocationCall builds a "location" tool call with float coordinates.
func LocationCall(name string, lat, lng float64, sequence int) llm.ToolCall {
	return llm.ToolCall{
		Name: "location",
		Arguments: map[string]any{
			"name":        name,
			"lat":         lat,
			"lng":         lng,
			"description": "Visit " + name,
			"sequence":    sequence,
		},
	}
}

// LineCall builds a "line" tool call between two coordinate pairs.
func LineCall(fromLat, fromLng, toLat, toLng float64, transport string) llm.ToolCall {
	return llm.ToolCall{
		Name: "line",
		Arguments: map[string]any{
			"start":     map[string]any{"lat": fromLat, "lng": fromLng},
			"end":       map[string]any{"lat": toLat, "lng": toLng},
			"transport": transport,
		},
	}
}
