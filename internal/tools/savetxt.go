// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"os"
	"time"
)

// RecordHeader opens every block appended by AppendRecord.
const RecordHeader = "--- Research Output ---"

// RecordTimeFormat is the timestamp layout of appended blocks.
const RecordTimeFormat = "2006-01-02 15:04:05"

// AppendRecord appends a timestamped block holding text to the file at
// path, creating it if needed. Existing content is never rewritten.
func AppendRecord(path, text string, now time.Time) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	block := fmt.Sprintf("%s\nTimestamp: %s\n\n%s\n\n", RecordHeader, now.Format(RecordTimeFormat), text)
	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// SaveResearch appends its input to the research log.
type SaveResearch struct {
	Path string
	// Now is the clock used for block timestamps. Nil means time.Now.
	Now func() time.Time
}

func (s *SaveResearch) Name() string { return "save_research" }

func (s *SaveResearch) Description() string {
	return "Save research output to the research log file with a timestamp. Input is the text to save."
}

func (s *SaveResearch) ReturnDirect() bool { return false }

func (s *SaveResearch) Run(_ context.Context, input string) Result {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if err := AppendRecord(s.Path, input, now()); err != nil {
		return Fail("Error: could not save research output: %v", err)
	}
	return Ok("Data successfully saved to " + s.Path)
}
