// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config supplies defaults for every component setting, binds them
// to viper, and validates the loaded result.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	DefaultUserAgent   = "research-assistant/0.1"
	DefaultAPIKeyEnv   = "NVIDIA_API_KEY"
	DefaultResearchLog = "research_output.txt"
)

// Defaults is the canonical configuration. The lookup tool keeps two
// results within a 2000 character budget and search output is handed back
// to the model rather than returned directly.
func Defaults() types.Config {
	return types.Config{
		Model: types.ModelConfig{
			Provider:  "nvidia",
			Model:     "mistralai/mixtral-8x7b-instruct-v0.1",
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   90 * time.Second,
		},
		Agent: types.AgentConfig{
			MaxSteps: 12,
			Timeout:  5 * time.Minute,
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 15 * time.Second, UserAgent: DefaultUserAgent},
			Provider:   types.SearchDuckDuckGo,
			MaxResults: 5,
		},
		Wikipedia: types.WikipediaConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 15 * time.Second, UserAgent: DefaultUserAgent},
			Language:   "en",
			TopK:       2,
			MaxChars:   2000,
		},
		Arxiv: types.ArxivConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 30 * time.Second, UserAgent: DefaultUserAgent},
			MaxResults: 5,
		},
		Tools: types.ToolsConfig{
			OutputDir:   ".",
			ResearchLog: DefaultResearchLog,
		},
		Dashboard: types.DashboardConfig{
			Addr:         ":8501",
			SaveDir:      ".",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 6 * time.Minute,
			SessionTTL:   2 * time.Hour,
			MaxSessions:  1000,
		},
		Log: types.LogConfig{Level: "info"},
	}
}

// SetDefaults registers every default key on v so that config files and
// RESEARCH_ASSISTANT_* environment variables can override them one by one.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("model.provider", d.Model.Provider)
	v.SetDefault("model.model", d.Model.Model)
	v.SetDefault("model.base_url", d.Model.BaseURL)
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.api_key_env", d.Model.APIKeyEnv)
	v.SetDefault("model.timeout", d.Model.Timeout)
	v.SetDefault("model.max_tokens", 0)

	v.SetDefault("agent.max_steps", d.Agent.MaxSteps)
	v.SetDefault("agent.timeout", d.Agent.Timeout)

	v.SetDefault("search.provider", string(d.Search.Provider))
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.max_results", d.Search.MaxResults)
	v.SetDefault("search.return_direct", d.Search.ReturnDirect)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.user_agent", d.Search.UserAgent)

	v.SetDefault("wikipedia.language", d.Wikipedia.Language)
	v.SetDefault("wikipedia.top_k", d.Wikipedia.TopK)
	v.SetDefault("wikipedia.max_chars", d.Wikipedia.MaxChars)
	v.SetDefault("wikipedia.timeout", d.Wikipedia.Timeout)
	v.SetDefault("wikipedia.user_agent", d.Wikipedia.UserAgent)

	v.SetDefault("arxiv.max_results", d.Arxiv.MaxResults)
	v.SetDefault("arxiv.timeout", d.Arxiv.Timeout)
	v.SetDefault("arxiv.user_agent", d.Arxiv.UserAgent)

	v.SetDefault("tools.enabled", []string{})
	v.SetDefault("tools.output_dir", d.Tools.OutputDir)
	v.SetDefault("tools.research_log", d.Tools.ResearchLog)

	v.SetDefault("dashboard.addr", d.Dashboard.Addr)
	v.SetDefault("dashboard.save_dir", d.Dashboard.SaveDir)
	v.SetDefault("dashboard.read_timeout", d.Dashboard.ReadTimeout)
	v.SetDefault("dashboard.write_timeout", d.Dashboard.WriteTimeout)
	v.SetDefault("dashboard.session_ttl", d.Dashboard.SessionTTL)
	v.SetDefault("dashboard.max_sessions", d.Dashboard.MaxSessions)

	v.SetDefault("log.level", d.Log.Level)
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

var knownProviders = map[string]bool{
	"nvidia":     true,
	"openai":     true,
	"openrouter": true,
	"ollama":     true,
}

var knownSearch = map[types.SearchProvider]bool{
	types.SearchDuckDuckGo: true,
	types.SearchTavily:     true,
	types.SearchBrave:      true,
}

// Validate reports every invalid setting at once. Timeouts are required:
// none of the external calls fall back to an unbounded default.
func Validate(cfg types.Config) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !knownProviders[strings.ToLower(cfg.Model.Provider)] {
		add("model.provider %q is not one of nvidia, openai, openrouter, ollama", cfg.Model.Provider)
	}
	if strings.TrimSpace(cfg.Model.Model) == "" {
		add("model.model is required")
	}
	if cfg.Model.Timeout <= 0 {
		add("model.timeout must be positive")
	}
	if cfg.Agent.Timeout <= 0 {
		add("agent.timeout must be positive")
	}
	if cfg.Agent.MaxSteps <= 0 {
		add("agent.max_steps must be positive")
	}
	if !knownSearch[cfg.Search.Provider] {
		add("search.provider %q is not one of duckduckgo, tavily, brave", cfg.Search.Provider)
	}
	if cfg.Search.Timeout <= 0 {
		add("search.timeout must be positive")
	}
	if cfg.Search.MaxResults <= 0 {
		add("search.max_results must be positive")
	}
	if cfg.Wikipedia.Timeout <= 0 {
		add("wikipedia.timeout must be positive")
	}
	if cfg.Wikipedia.TopK <= 0 {
		add("wikipedia.top_k must be positive")
	}
	if cfg.Wikipedia.MaxChars <= 0 {
		add("wikipedia.max_chars must be positive")
	}
	if cfg.Arxiv.Timeout <= 0 {
		add("arxiv.timeout must be positive")
	}
	if cfg.Arxiv.MaxResults <= 0 {
		add("arxiv.max_results must be positive")
	}
	if cfg.Dashboard.SessionTTL <= 0 {
		add("dashboard.session_ttl must be positive")
	}
	if cfg.Dashboard.MaxSessions <= 0 {
		add("dashboard.max_sessions must be positive")
	}
	if cfg.Dashboard.WriteTimeout > 0 && cfg.Dashboard.WriteTimeout <= cfg.Agent.Timeout {
		add("dashboard.write_timeout (%s) must exceed agent.timeout (%s)", cfg.Dashboard.WriteTimeout, cfg.Agent.Timeout)
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
