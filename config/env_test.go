package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvWithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		env      map[string]string
		expected string
	}{
		{
			name:     "default used when var unset",
			input:    `${LLM_API_URL:-http://localhost:11434}/v1`,
			expected: `http://localhost:11434/v1`,
		},
		{
			name:     "env value used when set",
			input:    `${LLM_API_URL:-http://localhost:11434}/v1`,
			env:      map[string]string{"LLM_API_URL": "http://prod:8080"},
			expected: `http://prod:8080/v1`,
		},
		{
			name:     "partial env set",
			input:    `nats://${NATS_HOST:-localhost}:${NATS_PORT:-4222}`,
			env:      map[string]string{"NATS_HOST": "nats.prod"},
			expected: `nats://nats.prod:4222`,
		},
		{
			name:     "empty default",
			input:    `prefix${OPTIONAL:-}suffix`,
			expected: `prefixsuffix`,
		},
		{
			name:     "simple var",
			input:    `${SIMPLE_VAR}`,
			env:      map[string]string{"SIMPLE_VAR": "value"},
			expected: `value`,
		},
		{
			name:     "simple var unset",
			input:    `${SIMPLE_VAR}`,
			expected: ``,
		},
		{
			name:     "bare dollar untouched",
			input:    `cost: $100`,
			expected: `cost: $100`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range []string{"LLM_API_URL", "NATS_HOST", "NATS_PORT", "OPTIONAL", "SIMPLE_VAR"} {
				t.Setenv(v, "")
				require.NoError(t, os.Unsetenv(v))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			assert.Equal(t, tt.expected, ExpandEnvWithDefaults(tt.input))
		})
	}
}
