package tripplanner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolSchema(t *testing.T) {
	tools := ToolSchema()
	require.Len(t, tools, 2)

	tests := []struct {
		name     string
		required []string
		optional []string
	}{
		{ToolLocation, []string{"name", "lat", "lng", "description", "sequence"}, []string{"time", "duration", "category"}},
		{ToolLine, []string{"start", "end", "transport"}, []string{"distance", "travel_time", "description", "cost"}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := tools[i]
			assert.Equal(t, tt.name, tool.Name)
			assert.NotEmpty(t, tool.Description)
			assert.Equal(t, "object", tool.Parameters["type"])
			assert.ElementsMatch(t, tt.required, tool.Parameters["required"])

			props, ok := tool.Parameters["properties"].(map[string]any)
			require.True(t, ok)
			for _, key := range append(tt.required, tt.optional...) {
				assert.Contains(t, props, key)
			}
			assert.Len(t, props, len(tt.required)+len(tt.optional))
		})
	}
}

func TestToolSchema_SerializesAsJSONSchema(t *testing.T) {
	data, err := json.Marshal(ToolSchema())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	line := decoded[1]["parameters"].(map[string]any)["properties"].(map[string]any)
	start := line["start"].(map[string]any)
	assert.Equal(t, "object", start["type"])
	assert.ElementsMatch(t, []any{"lat", "lng"}, start["required"])
}
