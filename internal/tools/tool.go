// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools implements the capabilities the agent loop may invoke: web
// search, Wikipedia lookup, arXiv search, saving content to a named file,
// and appending a research record to the research log.
//
// A tool never returns a Go error to the agent loop. Every outcome, good or
// bad, is a Result whose text the model can read and reason about.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateTool is returned when two tools share a name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ErrUnknownTool is returned when a requested tool name is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Tool is a named capability with a single text input.
type Tool interface {
	// Name is the identifier the model uses to call the tool.
	Name() string
	// Description tells the model when and how to use the tool.
	Description() string
	// ReturnDirect reports whether the tool's output ends the agent loop
	// as its final answer.
	ReturnDirect() bool
	// Run executes the tool. It must not panic.
	Run(ctx context.Context, input string) Result
}

// Result is the outcome of one tool call: success text, or error text
// when Failed is set.
type Result struct {
	Output string
	Failed bool
}

// Ok returns a successful Result.
func Ok(output string) Result { return Result{Output: output} }

// Fail returns a failed Result with a formatted message.
func Fail(format string, args ...any) Result {
	return Result{Output: fmt.Sprintf(format, args...), Failed: true}
}

// Text renders the result as conversation text. Failures carry an error
// prefix unless the message already has one.
func (r Result) Text() string {
	if r.Failed && !strings.HasPrefix(r.Output, "Error") {
		return "Error: " + r.Output
	}
	return r.Output
}

// Registry holds tools in registration order.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry registers tools in the order given.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t. Names must be unique.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.byName[name] = t
	r.tools = append(r.tools, t)
	return nil
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name()
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

// Select returns a registry holding only the named tools, in the order
// named. An empty list selects every tool.
func (r *Registry) Select(names []string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	selected := make([]Tool, 0, len(names))
	for _, name := range names {
		t, ok := r.byName[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownTool, name, strings.Join(r.Names(), ", "))
		}
		selected = append(selected, t)
	}
	return NewRegistry(selected...)
}
