// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// FieldError describes one field of the record that failed validation.
type FieldError struct {
	Field   string
	Problem string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Problem)
}

// ParseError is returned by Parse when the text is not a ResearchRecord.
// Raw holds the unmodified agent text. Either Err (the payload could not be
// decoded at all) or Fields (the payload decoded but does not match the
// record) is set.
type ParseError struct {
	Raw    string
	Fields []FieldError
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parsing research record: " + e.Err.Error()
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "parsing research record: " + strings.Join(parts, "; ")
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	fencedBlock = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n(.*?)```")
	fieldLine   = regexp.MustCompile(`(?m)^[ \t]*"?(topic|summary|sources|tools_used)"?[ \t]*:`)
)

// Parse decodes the agent's final text into a ResearchRecord.
//
// The payload is the first fenced code block if there is one, otherwise the
// text starting at the first line that opens a record field when that line
// comes before any "{", otherwise the span from the first "{" to the last
// "}". A key: value payload is read as a YAML document.
// All four fields must be present with the right types. Nothing is repaired
// or defaulted; a missing sources field is an error, not an empty list.
func Parse(raw string) (types.ResearchRecord, error) {
	payload := locate(raw)
	if payload == "" {
		return types.ResearchRecord{}, &ParseError{Raw: raw, Err: fmt.Errorf("no record found in output")}
	}

	root, err := decode(payload)
	if err != nil {
		return types.ResearchRecord{}, &ParseError{Raw: raw, Err: fmt.Errorf("decoding payload: %w", err)}
	}
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return types.ResearchRecord{}, &ParseError{Raw: raw, Err: fmt.Errorf("expected an object with topic, summary, sources and tools_used")}
	}

	fields := make(map[string]*yaml.Node, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if _, seen := fields[key]; !seen {
			fields[key] = root.Content[i+1]
		}
	}

	var (
		rec  types.ResearchRecord
		errs []FieldError
	)
	check := func(name string, fn func(*yaml.Node) string) {
		n, ok := fields[name]
		if !ok {
			errs = append(errs, FieldError{Field: name, Problem: "missing"})
			return
		}
		if problem := fn(n); problem != "" {
			errs = append(errs, FieldError{Field: name, Problem: problem})
		}
	}

	check("topic", func(n *yaml.Node) string { return text(n, &rec.Topic) })
	check("summary", func(n *yaml.Node) string { return text(n, &rec.Summary) })
	check("sources", func(n *yaml.Node) string { return list(n, &rec.Sources) })
	check("tools_used", func(n *yaml.Node) string { return list(n, &rec.ToolsUsed) })

	if len(errs) > 0 {
		return types.ResearchRecord{}, &ParseError{Raw: raw, Fields: errs}
	}
	return rec, nil
}

// decode reads payload into a node tree. Valid JSON goes through
// encoding/json first since YAML rejects some JSON whitespace, such as tab
// indentation.
func decode(payload string) (*yaml.Node, error) {
	var n yaml.Node
	if json.Valid([]byte(payload)) {
		var v any
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return nil, err
		}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return &n, nil
	}
	if err := yaml.Unmarshal([]byte(payload), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func locate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	field := -1
	if loc := fieldLine.FindStringIndex(trimmed); loc != nil {
		field = loc[0]
	}
	// A field line ahead of any brace means a key: value answer whose
	// values may themselves contain braces.
	if start := strings.Index(trimmed, "{"); start >= 0 && (field < 0 || start < field) {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return trimmed[start : end+1]
		}
	}
	if field >= 0 {
		return trimmed[field:]
	}
	return ""
}

func text(n *yaml.Node, dst *string) string {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "expected text, got " + describe(n)
	}
	*dst = n.Value
	return ""
}

func list(n *yaml.Node, dst *[]string) string {
	if n.Kind != yaml.SequenceNode {
		return "expected a list of text, got " + describe(n)
	}
	out := make([]string, 0, len(n.Content))
	for i, item := range n.Content {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return fmt.Sprintf("element %d: expected text, got %s", i, describe(item))
		}
		out = append(out, item.Value)
	}
	*dst = out
	return ""
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "list"
	case yaml.AliasNode:
		return "alias"
	}
	switch n.ShortTag() {
	case "!!null":
		return "null"
	case "!!int", "!!float":
		return "number"
	case "!!bool":
		return "boolean"
	}
	return strings.TrimPrefix(n.ShortTag(), "!!")
}
