// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// SearchResult is one hit returned by a web search provider.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher is a web search backend.
type Searcher interface {
	// Name is the tool name the backend is exposed under.
	Name() string
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// NewSearcher builds the backend selected by cfg.Provider.
func NewSearcher(cfg types.SearchConfig) (Searcher, error) {
	client, err := httputil.NewClient(cfg.HTTPConfig)
	if err != nil {
		return nil, fmt.Errorf("search client: %w", err)
	}
	max := cfg.MaxResults
	switch cfg.Provider {
	case types.SearchDuckDuckGo, "":
		return &DuckDuckGo{Client: client, MaxResults: max}, nil
	case types.SearchTavily:
		return &Tavily{APIKey: cfg.APIKey, Client: client, MaxResults: max}, nil
	case types.SearchBrave:
		return &Brave{APIKey: cfg.APIKey, Client: client, MaxResults: max}, nil
	default:
		return nil, fmt.Errorf("unsupported search provider %q", cfg.Provider)
	}
}

// WebSearch exposes a Searcher as a tool. The provider's results are
// returned as text without summarizing or reranking them.
type WebSearch struct {
	Searcher Searcher
	Direct   bool
}

// Name returns the backend's tool name.
func (w *WebSearch) Name() string { return w.Searcher.Name() }

// Description returns the tool description shown to the model.
func (w *WebSearch) Description() string {
	return "Search the web for information. Input should be a search query."
}

// ReturnDirect reports whether search output ends the agent loop.
func (w *WebSearch) ReturnDirect() bool { return w.Direct }

// Run forwards input to the search backend.
func (w *WebSearch) Run(ctx context.Context, input string) Result {
	query := strings.TrimSpace(input)
	if query == "" {
		return Fail("Error: search query is empty.")
	}
	results, err := w.Searcher.Search(ctx, query)
	if err != nil {
		return Fail("Error: web search failed: %v", err)
	}
	if len(results) == 0 {
		return Ok("No good search result was found")
	}
	return Ok(FormatSearchResults(results))
}

// FormatSearchResults renders results as title, URL and snippet blocks
// separated by blank lines.
func FormatSearchResults(results []SearchResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "Title: %s\nURL: %s", r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "\nSnippet: %s", r.Snippet)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func capResults(results []SearchResult, max int) []SearchResult {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
