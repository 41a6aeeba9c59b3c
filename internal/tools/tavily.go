// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
)

// tavilyAPIURL is the Tavily search endpoint. Package-level var for test substitution.
var tavilyAPIURL = "https://api.tavily.com/search"

// Tavily calls the Tavily search API. An API key is required.
type Tavily struct {
	APIKey     string
	Client     *http.Client
	MaxResults int
}

// Name returns the tool name for Tavily search.
func (t *Tavily) Name() string { return "TavilySearch" }

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search posts the query to Tavily.
func (t *Tavily) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	payload, err := json.Marshal(tavilyRequest{Query: query, SearchDepth: "basic", MaxResults: t.MaxResults})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing tavily response: %w", err)
	}

	results := make([]SearchResult, 0, len(tr.Results))
	for _, r := range tr.Results {
		results = append(results, SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return capResults(results, t.MaxResults), nil
}
