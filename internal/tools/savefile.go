// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// SaveToFile writes content to a named file. Its input is
// "<filename>::<content>", split on the first "::".
type SaveToFile struct {
	// Dir resolves relative filenames. Empty means the working directory.
	Dir string
}

func (s *SaveToFile) Name() string { return "save_to_file" }

func (s *SaveToFile) Description() string {
	return "Save content to a file. Input '<filename>::<content>'"
}

func (s *SaveToFile) ReturnDirect() bool { return false }

// Run creates or replaces the file with the trimmed content. Malformed
// input writes nothing.
func (s *SaveToFile) Run(_ context.Context, input string) Result {
	name, content, ok := strings.Cut(input, "::")
	if !ok {
		return Fail("Error: Input must be in format '<filename>::<content>'.")
	}
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)
	if name == "" {
		return Fail("Error: Filename is empty. Provide input like 'filename.txt::Your content here'.")
	}

	path := name
	if s.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.Dir, path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return Fail("Error: Could not save to file '%s': %v", name, err)
	}
	return Ok("Success: Content saved to '" + name + "'")
}
