package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultCallSubject is the JetStream subject LLM call records are published on.
const DefaultCallSubject = "tripplanner.llm.calls"

// responsePreviewMaxLen is the maximum length of the response kept in a record.
const responsePreviewMaxLen = 500

// CallRecord represents a single LLM API call for later inspection.
type CallRecord struct {
	// RequestID uniquely identifies this LLM call.
	RequestID string `json:"request_id"`

	// TraceID correlates this call with the inbound request that caused it.
	TraceID string `json:"trace_id,omitempty"`

	// Capability is the semantic capability requested.
	Capability string `json:"capability"`

	// Model is the actual model that was used for this call.
	Model string `json:"model"`

	// Provider is the LLM provider (anthropic, ollama, openai, gemini).
	Provider string `json:"provider"`

	// Messages is the input message history sent to the LLM.
	Messages []Message `json:"messages"`

	// ToolNames lists the tools offered to the model.
	ToolNames []string `json:"tool_names,omitempty"`

	// Response is the generated text, truncated to a preview.
	Response string `json:"response"`

	// ToolCallCount is how many tool calls the model emitted.
	ToolCallCount int `json:"tool_call_count"`

	Usage TokenUsage `json:"usage"`

	// FinishReason indicates why generation stopped (stop, length, tool_calls, ...).
	FinishReason string `json:"finish_reason"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`

	// Error contains any error message if the call failed.
	Error string `json:"error,omitempty"`

	// Retries is the number of retry attempts made.
	Retries int `json:"retries"`

	// FallbacksUsed lists models tried before success (if fallback was needed).
	FallbacksUsed []string `json:"fallbacks_used,omitempty"`
}

// Publisher is the subset of jetstream.JetStream used by the call store.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// CallStore publishes LLM call records to a JetStream subject.
type CallStore struct {
	js      Publisher
	subject string
	logger  *slog.Logger
}

// CallStoreOption configures a CallStore.
type CallStoreOption func(*CallStore)

// WithSubject overrides the subject records are published on.
func WithSubject(subject string) CallStoreOption {
	return func(s *CallStore) {
		if subject != "" {
			s.subject = subject
		}
	}
}

// WithStoreLogger sets the logger for the LLM call store.
func WithStoreLogger(logger *slog.Logger) CallStoreOption {
	return func(s *CallStore) {
		s.logger = logger
	}
}

// NewCallStore creates a new LLM call store.
func NewCallStore(js Publisher, opts ...CallStoreOption) (*CallStore, error) {
	if js == nil {
		return nil, fmt.Errorf("JetStream publisher required")
	}

	s := &CallStore{
		js:      js,
		subject: DefaultCallSubject,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Store publishes an LLM call record.
func (s *CallStore) Store(ctx context.Context, record *CallRecord) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if record.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}

	out := *record
	if len(out.Response) > responsePreviewMaxLen {
		out.Response = out.Response[:responsePreviewMaxLen]
	}

	data, err := json.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal call record: %w", err)
	}

	if _, err := s.js.Publish(ctx, s.subject, data, jetstream.WithMsgID(record.RequestID)); err != nil {
		return fmt.Errorf("publish call record: %w", err)
	}

	s.logger.Debug("Published LLM call record",
		"subject", s.subject,
		"request_id", record.RequestID,
		"trace_id", record.TraceID,
		"capability", record.Capability)

	return nil
}

// TraceContext holds trace information extracted from context.
type TraceContext struct {
	TraceID string
}

// traceContextKey is the context key for trace information.
type traceContextKey struct{}

// WithTraceContext adds trace information to a context.
func WithTraceContext(ctx context.Context, tc TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// GetTraceContext extracts trace information from a context.
func GetTraceContext(ctx context.Context) TraceContext {
	if tc, ok := ctx.Value(traceContextKey{}).(TraceContext); ok {
		return tc
	}
	return TraceContext{}
}
