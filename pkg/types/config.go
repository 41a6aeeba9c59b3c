package types

import "time"

// HTTPConfig holds shared HTTP settings used by tools that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. It has no implicit default: a
	// zero value is rejected when the client is built.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ModelConfig selects the language-model provider behind the agent loop.
type ModelConfig struct {
	// Provider is one of "nvidia", "openai", "openrouter", or "ollama".
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the provider's model identifier
	// (e.g. "mistralai/mixtral-8x7b-instruct-v0.1").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the provider's default OpenAI-compatible endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key. Usually left empty in config files
	// and resolved from APIKeyEnv or the secrets directory instead.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// APIKeyEnv names the environment variable holding the API key
	// (default NVIDIA_API_KEY).
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env" mapstructure:"api_key_env"`

	// Timeout bounds a single model request. Required.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Temperature is the sampling temperature. Nil uses the provider default.
	Temperature *float32 `json:"temperature,omitempty" yaml:"temperature,omitempty" mapstructure:"temperature"`

	// MaxTokens caps the completion length. Zero uses the provider default.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`
}

// AgentConfig bounds one run of the tool-calling agent loop.
type AgentConfig struct {
	// MaxSteps is the loop's step limit (model turns plus tool turns).
	MaxSteps int `json:"max_steps" yaml:"max_steps" mapstructure:"max_steps"`

	// Timeout bounds a whole research query, including every tool call. Required.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// SearchProvider identifies the backend of the web search tool.
type SearchProvider string

const (
	SearchDuckDuckGo SearchProvider = "duckduckgo"
	SearchTavily     SearchProvider = "tavily"
	SearchBrave      SearchProvider = "brave"
)

// SearchConfig holds settings for the web search tool.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the search backend (default duckduckgo).
	Provider SearchProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// APIKey authenticates against key-based providers (tavily, brave).
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// MaxResults caps the number of result blocks returned (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// ReturnDirect makes the agent loop end with the search output as its
	// final answer instead of reasoning further.
	ReturnDirect bool `json:"return_direct" yaml:"return_direct" mapstructure:"return_direct"`
}

// WikipediaConfig holds settings for the encyclopedia lookup tool.
type WikipediaConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Language is the Wikipedia language edition (default "en").
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// TopK is the maximum number of pages combined into one answer (default 2).
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// MaxChars is the character budget of the combined answer (default 2000).
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`
}

// ArxivConfig holds settings for the academic search tool.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults caps the number of papers returned (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ToolsConfig selects and configures the tools registered with the agent.
type ToolsConfig struct {
	// Enabled lists tool names in registration order. Empty enables all.
	Enabled []string `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// OutputDir is the base directory for relative file names written by
	// save_to_file (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// ResearchLog is the file save_research appends to (default research_output.txt).
	ResearchLog string `json:"research_log" yaml:"research_log" mapstructure:"research_log"`
}

// DashboardConfig holds settings for the interactive page.
type DashboardConfig struct {
	// Addr is the listen address (default ":8501").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// SaveDir is the directory per-result "save to file" actions write into.
	SaveDir string `json:"save_dir" yaml:"save_dir" mapstructure:"save_dir"`

	// ReadTimeout and WriteTimeout bound HTTP exchanges. WriteTimeout must
	// exceed the agent timeout so a finished query can still be rendered.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// SessionTTL is how long an idle browser session keeps its results
	// (default 2h).
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl" mapstructure:"session_ttl"`

	// MaxSessions caps the live sessions; the least recently used one is
	// dropped to make room (default 1000).
	MaxSessions int `json:"max_sessions" yaml:"max_sessions" mapstructure:"max_sessions"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups the configuration of every component.
type Config struct {
	Model     ModelConfig     `json:"model" yaml:"model" mapstructure:"model"`
	Agent     AgentConfig     `json:"agent" yaml:"agent" mapstructure:"agent"`
	Search    SearchConfig    `json:"search" yaml:"search" mapstructure:"search"`
	Wikipedia WikipediaConfig `json:"wikipedia" yaml:"wikipedia" mapstructure:"wikipedia"`
	Arxiv     ArxivConfig     `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Tools     ToolsConfig     `json:"tools" yaml:"tools" mapstructure:"tools"`
	Dashboard DashboardConfig `json:"dashboard" yaml:"dashboard" mapstructure:"dashboard"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}
