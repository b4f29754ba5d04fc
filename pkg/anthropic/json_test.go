package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	Name   string `json:"name"`
	IsBank bool   `json:"is_bank"`
}

func TestDecodeJSON_Strict(t *testing.T) {
	var out []verdict
	require.NoError(t, DecodeJSON(`[{"name": "Alpha Trust", "is_bank": true}]`, &out))
	require.Len(t, out, 1)
	assert.True(t, out[0].IsBank)
}

func TestDecodeJSON_CodeFence(t *testing.T) {
	var out []verdict
	raw := "```json\n[{\"name\": \"Alpha Trust\", \"is_bank\": false}]\n```"
	require.NoError(t, DecodeJSON(raw, &out))
	require.Len(t, out, 1)
}

func TestDecodeJSON_FenceWithoutLanguage(t *testing.T) {
	var out []verdict
	raw := "```\n[{\"name\": \"Alpha Trust\", \"is_bank\": true}]\n```"
	require.NoError(t, DecodeJSON(raw, &out))
	require.Len(t, out, 1)
}

func TestDecodeJSON_LeadingProse(t *testing.T) {
	var out []verdict
	raw := `Here are the results you asked for:
[{"name": "Alpha Trust", "is_bank": true}]
Let me know if you need anything else.`
	require.NoError(t, DecodeJSON(raw, &out))
	require.Len(t, out, 1)
}

func TestDecodeJSON_ObjectSpan(t *testing.T) {
	var out map[string]any
	raw := `The answer is {"total": 3} as requested.`
	require.NoError(t, DecodeJSON(raw, &out))
	assert.Equal(t, 3.0, out["total"])
}

func TestDecodeJSON_Garbage(t *testing.T) {
	var out []verdict
	assert.Error(t, DecodeJSON("I cannot help with that.", &out))
	assert.Error(t, DecodeJSON("", &out))
}
