package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/c360studio/tripplanner/llm"
	_ "github.com/c360studio/tripplanner/llm/providers" // Register providers
	"github.com/c360studio/tripplanner/model"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatCompletion writes an OpenAI-format response with optional tool calls.
func chatCompletion(w http.ResponseWriter, content string, toolCalls ...map[string]any) {
	message := map[string]any{"role": "assistant", "content": content}
	finish := "stop"
	if len(toolCalls) > 0 {
		message["tool_calls"] = toolCalls
		finish = "tool_calls"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":    "chatcmpl-123",
		"model": "test-model",
		"choices": []map[string]any{
			{"index": 0, "message": message, "finish_reason": finish},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 8, "total_tokens": 18},
	})
}

func locationCall(id, name string, seq int) map[string]any {
	args, _ := json.Marshal(map[string]any{"name": name, "lat": 48.8584, "lng": 2.2945, "sequence": seq})
	return map[string]any{
		"id":       id,
		"type":     "function",
		"function": map[string]any{"name": "location", "arguments": string(args)},
	}
}

// testRegistry wires the itinerary capability to the given servers, in order.
func testRegistry(urls ...string) *model.Registry {
	names := make([]string, len(urls))
	endpoints := make(map[string]*model.EndpointConfig, len(urls))
	for i, u := range urls {
		name := "endpoint-" + string(rune('a'+i))
		names[i] = name
		endpoints[name] = &model.EndpointConfig{Provider: "ollama", URL: u, Model: "test-model"}
	}
	caps := map[model.Capability]*model.CapabilityConfig{
		model.CapabilityItinerary: {Preferred: names[:1], Fallback: names[1:]},
	}
	return model.NewRegistry(caps, endpoints)
}

var fastRetry = llm.RetryConfig{
	MaxAttempts:       3,
	BackoffBase:       time.Millisecond,
	BackoffMultiplier: 2.0,
	MaxBackoff:        10 * time.Millisecond,
}

func itineraryRequest() llm.Request {
	return llm.Request{
		Capability: "itinerary",
		Messages:   []llm.Message{{Role: "user", Content: "Plan a day in Paris"}},
		Tools: []llm.ToolDefinition{
			{Name: "location", Parameters: map[string]any{"type": "object"}},
			{Name: "line", Parameters: map[string]any{"type": "object"}},
		},
		ToolChoice: llm.ToolChoiceRequired,
	}
}

func TestClient_Complete_ToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/chat/completions", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"tool_choice":"required"`)
		assert.Contains(t, string(body), `"name":"line"`)

		chatCompletion(w, "", locationCall("c1", "Eiffel Tower", 1), locationCall("c2", "Louvre", 2))
	}))
	defer server.Close()

	client := llm.NewClient(testRegistry(server.URL))

	resp, err := client.Complete(context.Background(), itineraryRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "test-model", resp.Model)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	assert.Equal(t, 18, resp.Usage.TotalTokens)
	require.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, "Eiffel Tower", resp.ToolCalls[0].Arguments["name"])
	assert.Equal(t, "Louvre", resp.ToolCalls[1].Arguments["name"])
}

func TestClient_Complete_SingleAttemptByDefault(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := llm.NewClient(testRegistry(server.URL))

	_, err := client.Complete(context.Background(), itineraryRequest())
	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_Complete_RetryOnTransientError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("slow down"))
			return
		}
		chatCompletion(w, "Success after retries")
	}))
	defer server.Close()

	client := llm.NewClient(testRegistry(server.URL), llm.WithRetryConfig(fastRetry))

	resp, err := client.Complete(context.Background(), itineraryRequest())
	require.NoError(t, err)
	assert.Equal(t, "Success after retries", resp.Content)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_Complete_NoRetryOnFatalError(t *testing.T) {
	var primary, secondary atomic.Int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		primary.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		secondary.Add(1)
		chatCompletion(w, "unused")
	}))
	defer good.Close()

	client := llm.NewClient(testRegistry(bad.URL, good.URL), llm.WithRetryConfig(fastRetry))

	_, err := client.Complete(context.Background(), itineraryRequest())
	require.Error(t, err)
	assert.True(t, llm.IsFatal(err))
	assert.Equal(t, int32(1), primary.Load())
	assert.Equal(t, int32(0), secondary.Load(), "fatal errors must not fall back")
}

func TestClient_Complete_Fallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatCompletion(w, "from fallback")
	}))
	defer fallback.Close()

	registry := testRegistry(primary.URL, fallback.URL)
	client := llm.NewClient(registry)

	resp, err := client.Complete(context.Background(), itineraryRequest())
	require.NoError(t, err)
	assert.Equal(t, "from fallback", resp.Content)

	health := registry.GetEndpointHealth("endpoint-a")
	require.NotNil(t, health)
	assert.Equal(t, 1, health.FailureCount)
}

func TestClient_Complete_AllEndpointsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := llm.NewClient(testRegistry(server.URL, server.URL))

	_, err := client.Complete(context.Background(), itineraryRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all endpoints failed")
}

func TestClient_Complete_UnparseableBodyIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := llm.NewClient(testRegistry(server.URL))

	_, err := client.Complete(context.Background(), itineraryRequest())
	require.Error(t, err)
	assert.True(t, llm.IsFatal(err))
}

func TestClient_Complete_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		chatCompletion(w, "too late")
	}))
	defer server.Close()

	client := llm.NewClient(testRegistry(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, itineraryRequest())
	require.Error(t, err)
}

func TestClient_Complete_ValidationErrors(t *testing.T) {
	client := llm.NewClient(model.NewDefaultRegistry())

	tests := []struct {
		name    string
		req     llm.Request
		wantErr string
	}{
		{
			name:    "missing capability",
			req:     llm.Request{Messages: []llm.Message{{Role: "user", Content: "hi"}}},
			wantErr: "capability is required",
		},
		{
			name:    "no messages",
			req:     llm.Request{Capability: "itinerary"},
			wantErr: "at least one message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Complete(context.Background(), tt.req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type capturePublisher struct {
	data [][]byte
}

func (c *capturePublisher) Publish(_ context.Context, _ string, data []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	c.data = append(c.data, data)
	return &jetstream.PubAck{}, nil
}

func TestClient_Complete_RecordsCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatCompletion(w, "", locationCall("c1", "Eiffel Tower", 1))
	}))
	defer server.Close()

	pub := &capturePublisher{}
	store, err := llm.NewCallStore(pub)
	require.NoError(t, err)

	client := llm.NewClient(testRegistry(server.URL), llm.WithCallStore(store))

	ctx := llm.WithTraceContext(context.Background(), llm.TraceContext{TraceID: "trace-42"})
	resp, err := client.Complete(ctx, itineraryRequest())
	require.NoError(t, err)

	require.Len(t, pub.data, 1)
	var record llm.CallRecord
	require.NoError(t, json.Unmarshal(pub.data[0], &record))
	assert.Equal(t, resp.RequestID, record.RequestID)
	assert.Equal(t, "trace-42", record.TraceID)
	assert.Equal(t, "itinerary", record.Capability)
	assert.Equal(t, "ollama", record.Provider)
	assert.Equal(t, []string{"location", "line"}, record.ToolNames)
	assert.Equal(t, 1, record.ToolCallCount)
	assert.Empty(t, record.Error)
}

func TestClient_Complete_RecordsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	pub := &capturePublisher{}
	store, err := llm.NewCallStore(pub)
	require.NoError(t, err)

	client := llm.NewClient(testRegistry(server.URL), llm.WithCallStore(store))

	_, err = client.Complete(context.Background(), itineraryRequest())
	require.Error(t, err)

	require.Len(t, pub.data, 1)
	var record llm.CallRecord
	require.NoError(t, json.Unmarshal(pub.data[0], &record))
	assert.NotEmpty(t, record.Error)
	assert.Equal(t, "endpoint-a", record.Model)
}
