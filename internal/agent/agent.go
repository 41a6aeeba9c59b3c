// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent wires the chat model, the tool registry and the prompt into
// a tool-calling agent loop and turns its final answer into a research
// record. An Assistant is built once per process and shared by reference;
// each Research call is one blocking run of the loop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/prompt"
	"github.com/pdiddy/research-assistant/internal/record"
	"github.com/pdiddy/research-assistant/internal/tools"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrTimeoutRequired is returned when the agent timeout is not positive.
var ErrTimeoutRequired = errors.New("agent timeout is required")

// Response is the outcome of one research query. Raw is always the agent's
// final text, even when Record could not be parsed from it.
type Response struct {
	Query  string
	Raw    string
	Record types.ResearchRecord
}

// ToolInfo describes a registered tool for display.
type ToolInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ReturnDirect bool   `json:"return_direct"`
}

// Assistant holds everything a research query needs.
type Assistant struct {
	registry *tools.Registry
	agent    *react.Agent
	timeout  time.Duration
	log      *slog.Logger
}

type options struct {
	chatModel model.ToolCallingChatModel
	registry  *tools.Registry
	logger    *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithChatModel uses m instead of building one from the model config.
func WithChatModel(m model.ToolCallingChatModel) Option {
	return func(o *options) { o.chatModel = m }
}

// WithTools uses r instead of the default tool set.
func WithTools(r *tools.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLogger sets the logger for agent and tool activity.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds the model, the tools and the agent loop. A missing API key is
// reported here, before any query runs.
func New(ctx context.Context, cfg types.Config, opts ...Option) (*Assistant, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Agent.Timeout <= 0 {
		return nil, ErrTimeoutRequired
	}

	cm := o.chatModel
	if cm == nil {
		var err error
		cm, err = llm.NewChatModel(ctx, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("initializing model: %w", err)
		}
	}

	registry := o.registry
	if registry == nil {
		var err error
		registry, err = tools.Default(cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing tools: %w", err)
		}
	}

	baseTools := make([]tool.BaseTool, 0, registry.Len())
	direct := make(map[string]struct{})
	for _, t := range registry.All() {
		baseTools = append(baseTools, &bridge{tool: t, log: o.logger})
		if t.ReturnDirect() {
			direct[t.Name()] = struct{}{}
		}
	}

	maxSteps := cfg.Agent.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 12
	}

	ra, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel:   cm,
		ToolsConfig:        compose.ToolsNodeConfig{Tools: baseTools},
		MaxStep:            maxSteps,
		ToolReturnDirectly: direct,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing agent loop: %w", err)
	}

	o.logger.Info("assistant ready", "tools", registry.Names(), "max_steps", maxSteps, "timeout", cfg.Agent.Timeout)
	return &Assistant{
		registry: registry,
		agent:    ra,
		timeout:  cfg.Agent.Timeout,
		log:      o.logger,
	}, nil
}

// Research runs the agent loop once for query and parses its final text.
// On a parse failure the Response still carries Raw and the error is a
// *record.ParseError. There is no retry.
func (a *Assistant) Research(ctx context.Context, query string) (Response, error) {
	return a.ResearchWithHistory(ctx, query, nil)
}

// ResearchWithHistory is Research with prior conversation turns placed
// between the system instruction and the query.
func (a *Assistant) ResearchWithHistory(ctx context.Context, query string, history []*schema.Message) (Response, error) {
	msgs, err := prompt.Build(query, history)
	if err != nil {
		return Response{Query: query}, err
	}
	resp := Response{Query: msgs[len(msgs)-1].Content}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	a.log.InfoContext(ctx, "research started", "query", resp.Query)

	out, err := a.agent.Generate(ctx, msgs)
	if err != nil {
		a.log.ErrorContext(ctx, "research failed", "error", err, "elapsed", time.Since(start))
		return resp, fmt.Errorf("running agent: %w", err)
	}
	resp.Raw = out.Content

	rec, err := record.Parse(resp.Raw)
	if err != nil {
		a.log.WarnContext(ctx, "unstructured answer", "error", err, "elapsed", time.Since(start))
		return resp, err
	}
	resp.Record = rec

	a.log.InfoContext(ctx, "research finished", "topic", rec.Topic, "sources", len(rec.Sources), "elapsed", time.Since(start))
	return resp, nil
}

// Tools lists the registered tools in registration order.
func (a *Assistant) Tools() []ToolInfo {
	all := a.registry.All()
	infos := make([]ToolInfo, len(all))
	for i, t := range all {
		infos[i] = ToolInfo{Name: t.Name(), Description: t.Description(), ReturnDirect: t.ReturnDirect()}
	}
	return infos
}
