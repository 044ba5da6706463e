package tripplanner

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriber_HandleMessage(t *testing.T) {
	tests := []struct {
		name        string
		gen         *stubGenerator
		data        string
		wantSuccess bool
		wantMessage string
	}{
		{"plan", &stubGenerator{gen: &Generation{ToolCalls: parisCalls()}}, `{"destination":"Paris"}`, true, "Trip plan generated successfully"},
		{"missing destination", &stubGenerator{}, `{}`, false, "missing destination"},
		{"not json", &stubGenerator{}, `plan me a trip`, false, "invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSubscriber(newTestPlanner(tt.gen), "", nil)
			out := s.HandleMessage(context.Background(), []byte(tt.data))

			var res resultBody
			require.NoError(t, json.Unmarshal(out, &res))
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Contains(t, res.Message, tt.wantMessage)
		})
	}
}

func TestNewSubscriber_DefaultSubject(t *testing.T) {
	assert.Equal(t, DefaultPlanSubject, NewSubscriber(nil, "", nil).Subject())
	assert.Equal(t, "custom.plan", NewSubscriber(nil, "custom.plan", nil).Subject())
}
