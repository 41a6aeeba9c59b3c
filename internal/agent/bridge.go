// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/pdiddy/research-assistant/internal/tools"
)

// bridge adapts a tools.Tool to eino's InvokableTool. The model calls it
// with a JSON object holding one "input" string; the tool's Result is
// folded into the returned text, and the error is always nil so the agent
// loop only ever sees text it can reason about.
type bridge struct {
	tool tools.Tool
	log  *slog.Logger
}

var _ tool.InvokableTool = (*bridge)(nil)

func (b *bridge) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: b.tool.Name(),
		Desc: b.tool.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"input": {
				Type:     schema.String,
				Desc:     "The text input for the tool.",
				Required: true,
			},
		}),
	}, nil
}

func (b *bridge) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	input := toolInput(argumentsInJSON)
	b.log.DebugContext(ctx, "tool call", "tool", b.tool.Name(), "input", input)

	res := b.run(ctx, input)
	b.log.DebugContext(ctx, "tool result", "tool", b.tool.Name(), "failed", res.Failed, "bytes", len(res.Output))
	return res.Text(), nil
}

func (b *bridge) run(ctx context.Context, input string) (res tools.Result) {
	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorContext(ctx, "tool panicked", "tool", b.tool.Name(), "panic", r)
			res = tools.Fail("Error: tool %s failed unexpectedly: %v", b.tool.Name(), r)
		}
	}()
	return b.tool.Run(ctx, input)
}

// toolInput extracts the tool's text input from the model's arguments. It
// accepts {"input": "..."}, an object with exactly one string property, or
// falls back to the raw argument text.
func toolInput(args string) string {
	trimmed := strings.TrimSpace(args)
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		var s string
		if json.Unmarshal([]byte(trimmed), &s) == nil {
			return s
		}
		return args
	}
	if v, ok := obj["input"].(string); ok {
		return v
	}
	if len(obj) == 1 {
		for _, v := range obj {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return args
}
