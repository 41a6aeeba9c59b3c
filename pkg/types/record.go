// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research assistant:
// the structured research record produced per query, the dashboard's result
// entries and export document, and the configuration of every component.
package types

import "time"

// ResearchRecord is the structured result of one research query. All four
// fields are required; a response missing any of them, or carrying a field
// of the wrong type, is not a ResearchRecord.
type ResearchRecord struct {
	// Topic is a short label for the subject of the query.
	Topic string `json:"topic" yaml:"topic" jsonschema:"title=Topic,description=Short label for the subject of the research query"`

	// Summary is the free-text answer, ideally 150 to 300 words.
	Summary string `json:"summary" yaml:"summary" jsonschema:"title=Summary,description=Concise summary of the findings (150-300 words)"`

	// Sources lists URLs or citations in the order the model gave them. May be empty.
	Sources []string `json:"sources" yaml:"sources" jsonschema:"title=Sources,description=Credible sources used with links where available"`

	// ToolsUsed names the tools that contributed to the answer.
	ToolsUsed []string `json:"tools_used" yaml:"tools_used" jsonschema:"title=Tools Used,description=Names of the tools or methods used to gather the information"`
}

// ResearchEntry is one completed query kept in a dashboard session. It is
// created once, after the agent loop returns, and never modified.
type ResearchEntry struct {
	// ID identifies the entry within its session (a UUID).
	ID string `json:"id" yaml:"id"`

	// Query is the text the user submitted.
	Query string `json:"query" yaml:"query"`

	// Response is the parsed record.
	Response ResearchRecord `json:"response" yaml:"response"`

	// Raw is the agent's final text before parsing.
	Raw string `json:"raw,omitempty" yaml:"raw,omitempty"`

	// Timestamp is the creation time; exports render it as ISO-8601.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ExportDocument is the downloadable serialization of a session's results.
type ExportDocument struct {
	// Timestamp is when the export was produced.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// ResearchResults lists the session's entries, oldest first.
	ResearchResults []ResearchEntry `json:"research_results" yaml:"research_results"`
}
