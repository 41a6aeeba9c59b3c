// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm builds the tool-calling chat model behind the agent loop.
// Every supported provider exposes an OpenAI-compatible endpoint, so one
// client implementation serves them all.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrMissingAPIKey is returned when a remote provider has no API key.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrTimeoutRequired is returned when the model timeout is not positive.
var ErrTimeoutRequired = errors.New("model timeout is required")

// ErrUnsupportedProvider reports an unknown provider name.
type ErrUnsupportedProvider struct {
	Provider string
}

func (e *ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported model provider %q", e.Provider)
}

// Provider describes one OpenAI-compatible endpoint.
type Provider struct {
	Name         string
	BaseURL      string
	DefaultModel string
	// KeyRequired is false for local servers.
	KeyRequired bool
}

// Providers lists the supported model providers by name.
var Providers = map[string]Provider{
	"nvidia": {
		Name:         "nvidia",
		BaseURL:      "https://integrate.api.nvidia.com/v1",
		DefaultModel: "mistralai/mixtral-8x7b-instruct-v0.1",
		KeyRequired:  true,
	},
	"openai": {
		Name:         "openai",
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4o-mini",
		KeyRequired:  true,
	},
	"openrouter": {
		Name:         "openrouter",
		BaseURL:      "https://openrouter.ai/api/v1",
		DefaultModel: "mistralai/mixtral-8x7b-instruct",
		KeyRequired:  true,
	},
	"ollama": {
		Name:         "ollama",
		BaseURL:      "http://localhost:11434/v1",
		DefaultModel: "llama3.1",
	},
}

// Resolve returns the provider for cfg.Provider, defaulting to nvidia.
func Resolve(name string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "nvidia"
	}
	p, ok := Providers[name]
	if !ok {
		return Provider{}, &ErrUnsupportedProvider{Provider: name}
	}
	return p, nil
}

// Settings is the resolved client configuration for one provider.
type Settings struct {
	Provider Provider
	BaseURL  string
	Model    string
	APIKey   string
}

// Check validates cfg and fills provider defaults without building a client.
func Check(cfg types.ModelConfig) (Settings, error) {
	p, err := Resolve(cfg.Provider)
	if err != nil {
		return Settings{}, err
	}
	if cfg.Timeout <= 0 {
		return Settings{}, ErrTimeoutRequired
	}
	s := Settings{Provider: p, BaseURL: p.BaseURL, Model: p.DefaultModel, APIKey: strings.TrimSpace(cfg.APIKey)}
	if cfg.BaseURL != "" {
		s.BaseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		s.Model = cfg.Model
	}
	if p.KeyRequired && s.APIKey == "" {
		env := cfg.APIKeyEnv
		if env == "" {
			env = "the provider API key"
		}
		return Settings{}, fmt.Errorf("%w for provider %s: set %s", ErrMissingAPIKey, p.Name, env)
	}
	if s.APIKey == "" {
		// Local servers ignore the key but the client requires one.
		s.APIKey = p.Name
	}
	return s, nil
}

// NewChatModel builds the chat model described by cfg.
func NewChatModel(ctx context.Context, cfg types.ModelConfig) (model.ToolCallingChatModel, error) {
	s, err := Check(cfg)
	if err != nil {
		return nil, err
	}

	mc := &einoopenai.ChatModelConfig{
		APIKey:      s.APIKey,
		BaseURL:     s.BaseURL,
		Model:       s.Model,
		Timeout:     cfg.Timeout,
		Temperature: cfg.Temperature,
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		mc.MaxTokens = &maxTokens
	}

	cm, err := einoopenai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("creating %s chat model: %w", s.Provider.Name, err)
	}
	return cm, nil
}
