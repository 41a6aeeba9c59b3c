// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// NoArxivResult is returned when a search finds no paper.
const NoArxivResult = "No good Arxiv Result was found"

// Arxiv searches arXiv for papers matching a free-text query.
type Arxiv struct {
	Client     *http.Client
	MaxResults int
}

// NewArxiv builds the academic search tool from cfg.
func NewArxiv(cfg types.ArxivConfig) (*Arxiv, error) {
	client, err := httputil.NewClient(cfg.HTTPConfig)
	if err != nil {
		return nil, fmt.Errorf("arxiv client: %w", err)
	}
	return &Arxiv{Client: client, MaxResults: cfg.MaxResults}, nil
}

func (a *Arxiv) Name() string { return "arxiv_search" }

func (a *Arxiv) Description() string {
	return "Search arXiv for academic papers in physics, mathematics, computer science, " +
		"and related fields. Input should be a search query."
}

func (a *Arxiv) ReturnDirect() bool { return false }

// Run queries arXiv and formats each paper as a block of published date,
// title, authors, URL and abstract.
func (a *Arxiv) Run(ctx context.Context, input string) Result {
	papers, err := a.Search(ctx, input)
	if err != nil {
		return Fail("Error: arxiv search failed: %v", err)
	}
	if len(papers) == 0 {
		return Ok(NoArxivResult)
	}

	blocks := make([]string, 0, len(papers))
	for _, p := range papers {
		var b strings.Builder
		if !p.Published.IsZero() {
			fmt.Fprintf(&b, "Published: %s\n", p.Published.Format("2006-01-02"))
		}
		fmt.Fprintf(&b, "Title: %s\nAuthors: %s\nURL: https://arxiv.org/abs/%s\nSummary: %s",
			p.Title, strings.Join(p.Authors, ", "), p.ID, p.Abstract)
		blocks = append(blocks, b.String())
	}
	return Ok(strings.Join(blocks, "\n\n"))
}

// Paper is one arXiv search hit.
type Paper struct {
	ID        string
	Title     string
	Authors   []string
	Abstract  string
	Published time.Time
}

// Search queries the arXiv API ordered by relevance.
func (a *Arxiv) Search(ctx context.Context, query string) ([]Paper, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	maxResults := a.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	endpoint := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []Paper
	for _, entry := range feed.Entries {
		id := extractArxivID(entry.ID)
		if id == "" {
			continue
		}
		p := Paper{
			ID:       id,
			Title:    collapse(entry.Title),
			Abstract: collapse(entry.Summary),
		}
		for _, au := range entry.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(au.Name))
		}
		if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
			p.Published = t
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// buildArxivQuery turns free text into an all-fields conjunction
// (e.g. "quantum error" -> "all:quantum+AND+all:error").
func buildArxivQuery(text string) string {
	terms := strings.Fields(text)
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, "all:"+url.QueryEscape(t))
	}
	return strings.Join(parts, "+AND+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
