package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tool choice values understood by every provider adapter.
const (
	// ToolChoiceAuto lets the model decide between tool calls and text.
	ToolChoiceAuto = "auto"

	// ToolChoiceRequired forces at least one tool call.
	ToolChoiceRequired = "required"

	// ToolChoiceNone disables tool calling for the request.
	ToolChoiceNone = "none"
)

// ToolDefinition describes a function the model may call.
// Parameters is a JSON Schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCall is a structured invocation emitted by the model.
// Arguments is decoded with UseNumber so numeric precision survives.
type ToolCall struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// DecodeArguments parses a raw JSON argument payload into a map.
// Providers deliver arguments either as a JSON object or as a JSON string
// containing an object; both forms are accepted. Empty input yields an empty map.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("decode argument string: %w", err)
		}
		if encoded == "" {
			return map[string]any{}, nil
		}
		raw = []byte(encoded)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
