// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt assembles the conversation handed to the agent loop for one
// research query: the fixed system instruction, any prior chat history, and
// the user's query. The agent loop appends its own tool-call scratchpad.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/cloudwego/eino/schema"

	"github.com/pdiddy/research-assistant/internal/record"
)

// ErrEmptyQuery is returned when the query is empty or only whitespace.
var ErrEmptyQuery = errors.New("query is empty")

// systemTmpl is the fixed instruction for every query. FormatInstructions
// carries the record schema the final answer must match.
var systemTmpl = template.Must(template.New("system").Parse(`You are an expert research assistant. Your job is to gather concise, high-quality insights on a given topic using the tools provided to you (web search, Wikipedia, academic search, and file saving). For each topic, follow this structure:

1. Provide a concise summary (150-300 words) explaining the topic clearly.
2. List credible sources used, with links if available.
3. Mention the tools or methods you used to find the information (for example {{.ToolExample}}).
4. Present all content in the following format, with no extra commentary:

{{.FormatInstructions}}

Avoid vague responses. If you cannot find information, state clearly which part failed and suggest next steps for research.
`))

type systemData struct {
	FormatInstructions string
	ToolExample        string
}

// System renders the system instruction.
func System() (string, error) {
	var buf bytes.Buffer
	err := systemTmpl.Execute(&buf, systemData{
		FormatInstructions: record.FormatInstructions(),
		ToolExample:        "DuckDuckGoSearch, wikipedia, arxiv_search",
	})
	if err != nil {
		return "", fmt.Errorf("rendering system prompt: %w", err)
	}
	return buf.String(), nil
}

// Build returns the messages for one query: the system instruction, then
// history in order, then the query as a user message.
func Build(query string, history []*schema.Message) ([]*schema.Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	system, err := System()
	if err != nil {
		return nil, err
	}

	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(system))
	for _, m := range history {
		if m != nil {
			msgs = append(msgs, m)
		}
	}
	msgs = append(msgs, schema.UserMessage(query))
	return msgs, nil
}
