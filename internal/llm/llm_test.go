// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.ModelConfig
		want    Settings
		wantErr error
	}{
		{
			name: "nvidia defaults",
			cfg:  types.ModelConfig{Provider: "nvidia", APIKey: "nvapi-x", Timeout: time.Minute},
			want: Settings{
				Provider: Providers["nvidia"],
				BaseURL:  "https://integrate.api.nvidia.com/v1",
				Model:    "mistralai/mixtral-8x7b-instruct-v0.1",
				APIKey:   "nvapi-x",
			},
		},
		{
			name: "empty provider means nvidia",
			cfg:  types.ModelConfig{APIKey: "k", Timeout: time.Minute},
			want: Settings{
				Provider: Providers["nvidia"],
				BaseURL:  "https://integrate.api.nvidia.com/v1",
				Model:    "mistralai/mixtral-8x7b-instruct-v0.1",
				APIKey:   "k",
			},
		},
		{
			name: "overrides",
			cfg:  types.ModelConfig{Provider: "OpenAI", Model: "gpt-4o", BaseURL: "http://proxy/v1", APIKey: "sk", Timeout: time.Second},
			want: Settings{Provider: Providers["openai"], BaseURL: "http://proxy/v1", Model: "gpt-4o", APIKey: "sk"},
		},
		{
			name: "ollama needs no key",
			cfg:  types.ModelConfig{Provider: "ollama", Timeout: time.Second},
			want: Settings{Provider: Providers["ollama"], BaseURL: "http://localhost:11434/v1", Model: "llama3.1", APIKey: "ollama"},
		},
		{
			name:    "missing key",
			cfg:     types.ModelConfig{Provider: "nvidia", APIKeyEnv: "NVIDIA_API_KEY", Timeout: time.Minute},
			wantErr: ErrMissingAPIKey,
		},
		{
			name:    "whitespace key is missing",
			cfg:     types.ModelConfig{Provider: "openrouter", APIKey: "  ", Timeout: time.Minute},
			wantErr: ErrMissingAPIKey,
		},
		{
			name:    "timeout required",
			cfg:     types.ModelConfig{Provider: "nvidia", APIKey: "k"},
			wantErr: ErrTimeoutRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Check(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheck_MissingKeyNamesVariable(t *testing.T) {
	_, err := Check(types.ModelConfig{Provider: "nvidia", APIKeyEnv: "NVIDIA_API_KEY", Timeout: time.Minute})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NVIDIA_API_KEY")
}

func TestCheck_UnsupportedProvider(t *testing.T) {
	_, err := Check(types.ModelConfig{Provider: "acme", APIKey: "k", Timeout: time.Minute})

	var unsupported *ErrUnsupportedProvider
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "acme", unsupported.Provider)
}

func TestNewChatModel(t *testing.T) {
	cm, err := NewChatModel(context.Background(), types.ModelConfig{
		Provider:  "nvidia",
		APIKey:    "nvapi-test",
		Timeout:   time.Minute,
		MaxTokens: 512,
	})
	require.NoError(t, err)
	assert.NotNil(t, cm)

	_, err = NewChatModel(context.Background(), types.ModelConfig{Provider: "nvidia", Timeout: time.Minute})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
