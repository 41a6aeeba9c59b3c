// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestParse_KeyValueForm(t *testing.T) {
	raw := `topic: "Chilli plants"
summary: "Chilli plants grow best in warm, sunny conditions."
sources: ["https://example.com"]
tools_used: ["DuckDuckGoSearch"]`

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, types.ResearchRecord{
		Topic:     "Chilli plants",
		Summary:   "Chilli plants grow best in warm, sunny conditions.",
		Sources:   []string{"https://example.com"},
		ToolsUsed: []string{"DuckDuckGoSearch"},
	}, rec)
}

func TestParse_KeyValueWithBraces(t *testing.T) {
	raw := "topic: \"Set theory\"\nsummary: \"A set such as {1, 2} has two elements.\"\nsources: [\"https://example.com\"]\ntools_used: [\"wikipedia\"]"

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, types.ResearchRecord{
		Topic:     "Set theory",
		Summary:   "A set such as {1, 2} has two elements.",
		Sources:   []string{"https://example.com"},
		ToolsUsed: []string{"wikipedia"},
	}, rec)
}

func TestParse_Locations(t *testing.T) {
	want := types.ResearchRecord{
		Topic:     "Quantum computing",
		Summary:   "Recent progress in error correction.",
		Sources:   []string{"https://arxiv.org/abs/2401.00001", "Nature 2024"},
		ToolsUsed: []string{"DuckDuckGoSearch", "wikipedia"},
	}

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "bare JSON object",
			raw:  `{"topic": "Quantum computing", "summary": "Recent progress in error correction.", "sources": ["https://arxiv.org/abs/2401.00001", "Nature 2024"], "tools_used": ["DuckDuckGoSearch", "wikipedia"]}`,
		},
		{
			name: "fenced json block with commentary",
			raw: "Here is what I found.\n```json\n" +
				`{"topic": "Quantum computing", "summary": "Recent progress in error correction.", "sources": ["https://arxiv.org/abs/2401.00001", "Nature 2024"], "tools_used": ["DuckDuckGoSearch", "wikipedia"]}` +
				"\n```\nLet me know if you need more.",
		},
		{
			name: "object embedded in prose",
			raw: `Final answer: {"topic": "Quantum computing", "summary": "Recent progress in error correction.", "sources": ["https://arxiv.org/abs/2401.00001", "Nature 2024"], "tools_used": ["DuckDuckGoSearch", "wikipedia"]} Done.`,
		},
		{
			name: "tab indented JSON",
			raw:  "{\n\t\"topic\": \"Quantum computing\",\n\t\"summary\": \"Recent progress in error correction.\",\n\t\"sources\": [\"https://arxiv.org/abs/2401.00001\", \"Nature 2024\"],\n\t\"tools_used\": [\"DuckDuckGoSearch\", \"wikipedia\"]\n}",
		},
		{
			name: "fenced yaml block",
			raw:  "```yaml\ntopic: Quantum computing\nsummary: Recent progress in error correction.\nsources:\n  - https://arxiv.org/abs/2401.00001\n  - Nature 2024\ntools_used:\n  - DuckDuckGoSearch\n  - wikipedia\n```",
		},
		{
			name: "key value lines after a preamble",
			raw:  "Sure.\ntopic: Quantum computing\nsummary: Recent progress in error correction.\nsources: [\"https://arxiv.org/abs/2401.00001\", \"Nature 2024\"]\ntools_used: [DuckDuckGoSearch, wikipedia]",
		},
		{
			name: "unknown keys are ignored",
			raw:  `{"topic": "Quantum computing", "summary": "Recent progress in error correction.", "sources": ["https://arxiv.org/abs/2401.00001", "Nature 2024"], "tools_used": ["DuckDuckGoSearch", "wikipedia"], "confidence": 0.9}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, want, rec)
		})
	}
}

func TestParse_EmptySources(t *testing.T) {
	rec, err := Parse(`{"topic": "t", "summary": "s", "sources": [], "tools_used": []}`)
	require.NoError(t, err)
	assert.NotNil(t, rec.Sources)
	assert.Empty(t, rec.Sources)
}

func TestParse_FieldErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []FieldError
	}{
		{
			name: "missing sources",
			raw:  `{"topic": "Chilli plants", "summary": "s", "tools_used": ["DuckDuckGoSearch"]}`,
			want: []FieldError{{Field: "sources", Problem: "missing"}},
		},
		{
			name: "missing sources in key value form",
			raw:  "topic: \"Chilli plants\"\nsummary: \"s\"\ntools_used: [\"DuckDuckGoSearch\"]",
			want: []FieldError{{Field: "sources", Problem: "missing"}},
		},
		{
			name: "null topic",
			raw:  `{"topic": null, "summary": "s", "sources": [], "tools_used": []}`,
			want: []FieldError{{Field: "topic", Problem: "expected text, got null"}},
		},
		{
			name: "sources as a string",
			raw:  `{"topic": "t", "summary": "s", "sources": "https://example.com", "tools_used": []}`,
			want: []FieldError{{Field: "sources", Problem: "expected a list of text, got str"}},
		},
		{
			name: "non-text list element",
			raw:  `{"topic": "t", "summary": "s", "sources": ["a", 2], "tools_used": []}`,
			want: []FieldError{{Field: "sources", Problem: "element 1: expected text, got number"}},
		},
		{
			name: "several problems at once",
			raw:  `{"summary": 42, "sources": [], "tools_used": null}`,
			want: []FieldError{
				{Field: "topic", Problem: "missing"},
				{Field: "summary", Problem: "expected text, got number"},
				{Field: "tools_used", Problem: "expected a list of text, got null"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.raw, pe.Raw)
			assert.Equal(t, tt.want, pe.Fields)
			assert.NoError(t, pe.Err)
		})
	}
}

func TestParse_Unparseable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "plain prose", raw: "I could not find anything about that topic."},
		{name: "list instead of object", raw: "```json\n[1, 2, 3]\n```"},
		{name: "broken object", raw: `{"topic": "t", "summary": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.raw, pe.Raw)
			assert.Contains(t, err.Error(), "parsing research record")
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Fields: []FieldError{
		{Field: "sources", Problem: "missing"},
		{Field: "topic", Problem: "expected text, got null"},
	}}
	assert.Equal(t, "parsing research record: sources: missing; topic: expected text, got null", err.Error())
}

func TestFormatInstructions(t *testing.T) {
	text := FormatInstructions()
	assert.Contains(t, text, `"topic"`)
	assert.Contains(t, text, `"tools_used"`)
	assert.Contains(t, text, "```json")
	assert.Equal(t, text, FormatInstructions())
}

func TestSchema_RequiresAllFields(t *testing.T) {
	data, err := json.Marshal(Schema())
	require.NoError(t, err)

	var s struct {
		Type                 string         `json:"type"`
		Required             []string       `json:"required"`
		AdditionalProperties *bool          `json:"additionalProperties"`
		Properties           map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &s))

	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{"topic", "summary", "sources", "tools_used"}, s.Required)
	require.NotNil(t, s.AdditionalProperties)
	assert.False(t, *s.AdditionalProperties)
	assert.Len(t, s.Properties, 4)
}
