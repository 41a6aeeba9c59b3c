// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API keys for the model and search providers.
//
// Keys come from three places, checked in order: the environment (after an
// optional .env file has been merged into it), an explicit configuration
// value, and a directory of plain-text files where each filename is a key
// name such as nvidia-api-key or tavily-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotEnv merges the variables of a .env file into the process
// environment. Variables already set are left alone. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// KeyFile returns the secrets-directory filename for a provider's key.
func KeyFile(provider string) string {
	return strings.ToLower(provider) + "-api-key"
}

// Resolve returns the first non-empty key among the environment variable
// envName, explicit, and files[KeyFile(provider)]. It returns "" when none
// is set.
func Resolve(envName, explicit, provider string, files map[string]string) string {
	if envName != "" {
		if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	return files[KeyFile(provider)]
}
