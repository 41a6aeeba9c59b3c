// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/research-assistant/internal/httputil"
)

// duckDuckGoLiteURL is the DuckDuckGo lite HTML endpoint. Declared as a var
// so tests can substitute an httptest server.
var duckDuckGoLiteURL = "https://lite.duckduckgo.com/lite/"

// duckDuckGoMinInterval spaces consecutive queries from this process.
var duckDuckGoMinInterval = time.Second

var ddgPace struct {
	mu   sync.Mutex
	last time.Time
}

// DuckDuckGo scrapes the DuckDuckGo lite HTML page. It needs no API key.
type DuckDuckGo struct {
	Client     *http.Client
	MaxResults int
}

// Name returns the tool name for DuckDuckGo search.
func (d *DuckDuckGo) Name() string { return "DuckDuckGoSearch" }

// Search posts the query to the lite endpoint and extracts result links and
// snippets from the page.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if err := waitTurn(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, duckDuckGoLiteURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := httputil.ReadLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading duckduckgo response: %w", err)
	}
	return capResults(parseLiteHTML(string(body)), d.MaxResults), nil
}

func waitTurn(ctx context.Context) error {
	ddgPace.mu.Lock()
	defer ddgPace.mu.Unlock()
	if wait := time.Until(ddgPace.last.Add(duckDuckGoMinInterval)); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	ddgPace.last = time.Now()
	return nil
}

var (
	ddgLinkHrefFirst  = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	ddgLinkClassFirst = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	ddgSnippet        = regexp.MustCompile(`(?s)<td[^>]*class=['"]result-snippet['"][^>]*>(.*?)</td>`)
	htmlTag           = regexp.MustCompile(`<[^>]+>`)
)

func parseLiteHTML(page string) []SearchResult {
	links := ddgLinkHrefFirst.FindAllStringSubmatch(page, -1)
	if len(links) == 0 {
		links = ddgLinkClassFirst.FindAllStringSubmatch(page, -1)
	}
	snippets := ddgSnippet.FindAllStringSubmatch(page, -1)

	var results []SearchResult
	for i, m := range links {
		link := resolveDDGLink(strings.TrimSpace(html.UnescapeString(m[1])))
		title := cleanHTML(m[2])
		if link == "" || title == "" {
			continue
		}
		r := SearchResult{Title: title, URL: link}
		if i < len(snippets) {
			r.Snippet = cleanHTML(snippets[i][1])
		}
		results = append(results, r)
	}
	return results
}

// resolveDDGLink unwraps redirect links of the form //duckduckgo.com/l/?uddg=<url>.
func resolveDDGLink(link string) string {
	if !strings.Contains(link, "duckduckgo.com/l/") {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return link
}

func cleanHTML(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
