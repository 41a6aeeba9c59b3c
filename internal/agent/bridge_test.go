// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/tools"
)

func TestToolInput(t *testing.T) {
	tests := []struct {
		args string
		want string
	}{
		{`{"input": "quantum computing"}`, "quantum computing"},
		{`{"query": "chilli plants"}`, "chilli plants"},
		{`"just a string"`, "just a string"},
		{`notes.txt::hello`, "notes.txt::hello"},
		{`{"input": 3, "other": "x"}`, `{"input": 3, "other": "x"}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toolInput(tt.args), tt.args)
	}
}

type panicTool struct{}

func (panicTool) Name() string                            { return "boom" }
func (panicTool) Description() string                     { return "panics" }
func (panicTool) ReturnDirect() bool                      { return false }
func (panicTool) Run(context.Context, string) tools.Result { panic("kaboom") }

func TestBridge(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	b := &bridge{tool: &echoTool{name: "wikipedia", output: "result text"}, log: logger}
	info, err := b.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wikipedia", info.Name)
	assert.Equal(t, "echo tool wikipedia", info.Desc)

	out, err := b.InvokableRun(context.Background(), `{"input": "q"}`)
	require.NoError(t, err)
	assert.Equal(t, "result text", out)

	p := &bridge{tool: panicTool{}, log: logger}
	out, err = p.InvokableRun(context.Background(), `{"input": "q"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "kaboom")
	assert.Contains(t, out, "Error:")
}

func TestBridgeFoldsFailures(t *testing.T) {
	b := &bridge{tool: &tools.SaveToFile{Dir: t.TempDir()}, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	out, err := b.InvokableRun(context.Background(), `{"input": "::content"}`)
	require.NoError(t, err)
	assert.Equal(t, "Error: Filename is empty. Provide input like 'filename.txt::Your content here'.", out)
}
