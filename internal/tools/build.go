// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"path/filepath"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Default builds every tool from cfg in registration order: web search,
// Wikipedia, arXiv, save_to_file, save_research. cfg.Tools.Enabled, when
// set, narrows and orders the result.
func Default(cfg types.Config) (*Registry, error) {
	searcher, err := NewSearcher(cfg.Search)
	if err != nil {
		return nil, err
	}
	wiki, err := NewWikipedia(cfg.Wikipedia)
	if err != nil {
		return nil, err
	}
	arxiv, err := NewArxiv(cfg.Arxiv)
	if err != nil {
		return nil, err
	}

	logPath := ResearchLogPath(cfg.Tools)

	all, err := NewRegistry(
		&WebSearch{Searcher: searcher, Direct: cfg.Search.ReturnDirect},
		wiki,
		arxiv,
		&SaveToFile{Dir: cfg.Tools.OutputDir},
		&SaveResearch{Path: logPath},
	)
	if err != nil {
		return nil, err
	}
	return all.Select(cfg.Tools.Enabled)
}

// ResearchLogPath is the file save_research appends to: ResearchLog
// (default research_output.txt) under OutputDir unless it is absolute.
func ResearchLogPath(cfg types.ToolsConfig) string {
	logPath := cfg.ResearchLog
	if logPath == "" {
		logPath = "research_output.txt"
	}
	if cfg.OutputDir != "" && !filepath.IsAbs(logPath) {
		logPath = filepath.Join(cfg.OutputDir, logPath)
	}
	return logPath
}
