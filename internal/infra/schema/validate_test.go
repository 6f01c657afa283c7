package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentctl/internal/domain"
)

const searchToolSchema = `{
  "type": "object",
  "required": ["query"],
  "properties": {
    "query": { "type": "string" },
    "maxResults": { "type": "integer", "minimum": 1 }
  },
  "additionalProperties": false
}`

func TestCheckParameters(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"empty is allowed", "", false},
		{"valid schema", searchToolSchema, false},
		{"not json", "{not json", true},
		{"wrong shape", `{"type": 42}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckParameters(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				code, ok := domain.CodeFrom(err)
				require.True(t, ok)
				assert.Equal(t, domain.CodeInvalidArgument, code)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckArguments(t *testing.T) {
	tests := []struct {
		name      string
		arguments map[string]any
		wantErr   bool
	}{
		{"valid arguments", map[string]any{"query": "failing agents"}, false},
		{"missing required field", map[string]any{"maxResults": 5}, true},
		{"wrong type", map[string]any{"query": 42}, true},
		{"unknown property rejected", map[string]any{"query": "x", "extra": true}, true},
		{"nil arguments fail required check", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckArguments(json.RawMessage(searchToolSchema), tt.arguments)
			if tt.wantErr {
				require.Error(t, err)
				code, ok := domain.CodeFrom(err)
				require.True(t, ok)
				assert.Equal(t, domain.CodeInvalidArgument, code)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckArguments_NoSchemaAcceptsAnything(t *testing.T) {
	assert.NoError(t, CheckArguments(nil, map[string]any{"anything": "goes"}))
}
