// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "nvidia-api-key", "  nvapi-abc123  \n")
				writeFile(t, dir, "tavily-api-key", "tvly-xyz789")
				return dir
			},
			want: map[string]string{
				"nvidia-api-key": "nvapi-abc123",
				"tavily-api-key": "tvly-xyz789",
			},
		},
		{
			name: "missing directory returns empty map",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openai-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"openai-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "brave-api-key", "bsa_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"brave-api-key": "bsa_real",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, dir, ".env", "RA_TEST_DOTENV_KEY=from-file\nRA_TEST_DOTENV_SET=from-file\n")

	t.Setenv("RA_TEST_DOTENV_SET", "from-env")
	t.Setenv("RA_TEST_DOTENV_KEY", "")
	require.NoError(t, os.Unsetenv("RA_TEST_DOTENV_KEY"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("RA_TEST_DOTENV_KEY"))
	assert.Equal(t, "from-env", os.Getenv("RA_TEST_DOTENV_SET"), "existing variables win")
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestResolve(t *testing.T) {
	files := map[string]string{"nvidia-api-key": "from-file"}

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("RA_TEST_KEY", "from-env")
		assert.Equal(t, "from-env", Resolve("RA_TEST_KEY", "from-config", "nvidia", files))
	})

	t.Run("explicit value next", func(t *testing.T) {
		t.Setenv("RA_TEST_KEY", "")
		assert.Equal(t, "from-config", Resolve("RA_TEST_KEY", "from-config", "nvidia", files))
	})

	t.Run("secrets file last", func(t *testing.T) {
		t.Setenv("RA_TEST_KEY", "")
		assert.Equal(t, "from-file", Resolve("RA_TEST_KEY", "", "NVIDIA", files))
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv("RA_TEST_KEY", "")
		assert.Empty(t, Resolve("RA_TEST_KEY", "", "openai", files))
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
