// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func entry(query, topic string, offset time.Duration) types.ResearchEntry {
	return types.ResearchEntry{
		Query: query,
		Response: types.ResearchRecord{
			Topic:     topic,
			Summary:   "Summary of " + topic,
			Sources:   []string{"https://example.com/" + topic},
			ToolsUsed: []string{"wikipedia"},
		},
		Raw:       `{"topic": "` + topic + `"}`,
		Timestamp: base.Add(offset),
	}
}

func TestAddAndGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, entry("chilli plants?", "Chilli", 0))
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	got, err := s.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, got)
}

func TestAddDefaults(t *testing.T) {
	s := newStore(t)
	e, err := s.Add(context.Background(), types.ResearchEntry{Query: "q", Response: types.ResearchRecord{Topic: "t", Summary: "s"}})
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, []string{}, e.Response.Sources)

	got, err := s.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Response.Sources)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))
}

func TestListOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for i, topic := range []string{"first", "second", "third"} {
		_, err := s.Add(ctx, entry("q "+topic, topic, time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Response.Topic)
	assert.Equal(t, "first", list[2].Response.Topic)

	chron, err := s.Chronological(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", chron[0].Response.Topic)

	pos, err := s.Position(ctx, list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestDeleteAndClear(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a, err := s.Add(ctx, entry("a", "A", 0))
	require.NoError(t, err)
	_, err = s.Add(ctx, entry("b", "B", time.Minute))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	_, err = s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, a.ID), ErrNotFound)
	_, err = s.Position(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Clear(ctx))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSearch(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, entry("latest quantum computing news", "Quantum", 0))
	require.NoError(t, err)
	_, err = s.Add(ctx, entry("how to grow chillies", "Chilli", time.Minute))
	require.NoError(t, err)
	_, err = s.Add(ctx, entry("100% cotton", "Textiles", 2*time.Minute))
	require.NoError(t, err)

	got, err := s.Search(ctx, "QUANTUM")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Quantum", got[0].Response.Topic)

	got, err = s.Search(ctx, "summary of chilli")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.Search(ctx, "%")
	require.NoError(t, err)
	require.Len(t, got, 1, "wildcards are matched literally")
	assert.Equal(t, "Textiles", got[0].Response.Topic)

	got, err = s.Search(ctx, " ")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestStoresAreIsolated(t *testing.T) {
	a := newStore(t)
	b := newStore(t)
	ctx := context.Background()

	_, err := a.Add(ctx, entry("q", "t", 0))
	require.NoError(t, err)

	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStats(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Total)
	assert.True(t, st.Last.IsZero())

	_, err = s.Add(ctx, entry("a", "A", 0))
	require.NoError(t, err)
	_, err = s.Add(ctx, entry("b", "B", time.Hour))
	require.NoError(t, err)

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.True(t, base.Add(time.Hour).Equal(st.Last))
}

// --- export ---

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "research_results_20250301_093000.json", ExportFilename(FormatJSON, base))
	assert.Equal(t, "research_results_20250301_093000.yaml", ExportFilename(FormatYAML, base))
}

func TestExportJSON(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, entry("first query", "First", 0))
	require.NoError(t, err)
	_, err = s.Add(ctx, entry("second query", "Second", time.Minute))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, &buf, base.Add(time.Hour)))

	var doc struct {
		Timestamp       string `json:"timestamp"`
		ResearchResults []struct {
			Query     string               `json:"query"`
			Response  types.ResearchRecord `json:"response"`
			Timestamp string               `json:"timestamp"`
		} `json:"research_results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2025-03-01T10:30:00Z", doc.Timestamp)
	require.Len(t, doc.ResearchResults, 2)
	assert.Equal(t, "first query", doc.ResearchResults[0].Query)
	assert.Equal(t, "2025-03-01T09:30:00Z", doc.ResearchResults[0].Timestamp)
	assert.Equal(t, []string{"wikipedia"}, doc.ResearchResults[1].Response.ToolsUsed)
}

func TestExportYAML(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, entry("q", "Chilli", 0))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf, "yaml", base))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	results, ok := doc["research_results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	response := first["response"].(map[string]any)
	assert.Equal(t, "Chilli", response["topic"])
	assert.Equal(t, []any{"wikipedia"}, response["tools_used"])
}

func TestExportEmpty(t *testing.T) {
	s := newStore(t)
	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(context.Background(), &buf, base))
	assert.Contains(t, buf.String(), `"research_results": []`)

	assert.Error(t, s.Export(context.Background(), &buf, "xml", base))
}

func TestWriteExportWithoutStore(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, FormatYAML, types.ExportDocument{Timestamp: base}))
	assert.Contains(t, buf.String(), "research_results: []")

	assert.Error(t, WriteExport(&buf, "csv", types.ExportDocument{}))
}
