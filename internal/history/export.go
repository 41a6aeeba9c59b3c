// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExportFilename returns the download name for an export produced at now,
// e.g. research_results_20250301_093000.json.
func ExportFilename(format string, now time.Time) string {
	return fmt.Sprintf("research_results_%s.%s", now.Format("20060102_150405"), format)
}

// Document returns the session's entries, oldest first, stamped with now.
func (s *Store) Document(ctx context.Context, now time.Time) (types.ExportDocument, error) {
	entries, err := s.Chronological(ctx)
	if err != nil {
		return types.ExportDocument{}, fmt.Errorf("querying for export: %w", err)
	}
	if entries == nil {
		entries = []types.ResearchEntry{}
	}
	return types.ExportDocument{Timestamp: now, ResearchResults: entries}, nil
}

// ExportJSON writes the export document as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, now time.Time) error {
	return s.Export(ctx, w, FormatJSON, now)
}

// ExportYAML writes the export document as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, now time.Time) error {
	return s.Export(ctx, w, FormatYAML, now)
}

// Export writes the document in the named format ("json" or "yaml").
func (s *Store) Export(ctx context.Context, w io.Writer, format string, now time.Time) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	doc, err := s.Document(ctx, now)
	if err != nil {
		return err
	}
	return WriteExport(w, format, doc)
}

// WriteExport serializes doc in the named format.
func WriteExport(w io.Writer, format string, doc types.ExportDocument) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if doc.ResearchResults == nil {
		doc.ResearchResults = []types.ResearchEntry{}
	}
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	}
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "", FormatYAML, "yml":
		return nil
	}
	return fmt.Errorf("unsupported export format %q", format)
}
