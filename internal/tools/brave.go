// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
)

// braveAPIURL is the Brave web search endpoint. Package-level var for test substitution.
var braveAPIURL = "https://api.search.brave.com/res/v1/web/search"

// Brave uses the Brave Search API. The key is sent as X-Subscription-Token.
type Brave struct {
	APIKey     string
	Client     *http.Client
	MaxResults int
}

// Name returns the tool name for Brave search.
func (b *Brave) Name() string { return "BraveSearch" }

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search executes a Brave query.
func (b *Brave) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, errors.New("brave: API key is missing")
	}

	params := url.Values{}
	params.Set("q", query)
	if b.MaxResults > 0 {
		params.Set("count", strconv.Itoa(b.MaxResults))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, braveAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("parsing brave response: %w", err)
	}

	results := make([]SearchResult, 0, len(br.Web.Results))
	for _, r := range br.Web.Results {
		results = append(results, SearchResult{Title: r.Title, URL: r.URL, Snippet: cleanHTML(r.Description)})
	}
	return capResults(results, b.MaxResults), nil
}
