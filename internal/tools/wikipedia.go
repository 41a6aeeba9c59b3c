// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// wikipediaAPIBase is the MediaWiki API endpoint; {lang} is replaced by the
// configured language edition. Declared as a var so tests can substitute an
// httptest server.
var wikipediaAPIBase = "https://{lang}.wikipedia.org/w/api.php"

// NoWikipediaResult is returned when a lookup finds no page.
const NoWikipediaResult = "No good Wikipedia Search Result was found"

// Wikipedia looks up encyclopedia pages and returns their introductions.
type Wikipedia struct {
	Client   *http.Client
	Language string
	TopK     int
	MaxChars int
}

// NewWikipedia builds the lookup tool from cfg.
func NewWikipedia(cfg types.WikipediaConfig) (*Wikipedia, error) {
	client, err := httputil.NewClient(cfg.HTTPConfig)
	if err != nil {
		return nil, fmt.Errorf("wikipedia client: %w", err)
	}
	return &Wikipedia{Client: client, Language: cfg.Language, TopK: cfg.TopK, MaxChars: cfg.MaxChars}, nil
}

func (w *Wikipedia) Name() string { return "wikipedia" }

func (w *Wikipedia) Description() string {
	return "A wrapper around Wikipedia. Useful for when you need to answer general questions about " +
		"people, places, companies, facts, historical events, or other subjects. " +
		"Input should be a search query."
}

func (w *Wikipedia) ReturnDirect() bool { return false }

// Run searches for up to TopK pages and returns "Page: <title>\nSummary:
// <extract>" blocks separated by blank lines, cut to MaxChars characters.
func (w *Wikipedia) Run(ctx context.Context, input string) Result {
	query := strings.TrimSpace(input)
	if query == "" {
		return Fail("Error: wikipedia query is empty.")
	}

	titles, err := w.search(ctx, query)
	if err != nil {
		return Fail("Error: wikipedia search failed: %v", err)
	}

	var blocks []string
	for _, title := range titles {
		extract, err := w.extract(ctx, title)
		if err != nil {
			return Fail("Error: wikipedia lookup of %q failed: %v", title, err)
		}
		if extract == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Page: %s\nSummary: %s", title, extract))
	}
	if len(blocks) == 0 {
		return Ok(NoWikipediaResult)
	}
	return Ok(truncate(strings.Join(blocks, "\n\n"), w.MaxChars))
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing,omitempty"`
		} `json:"pages"`
	} `json:"query"`
}

func (w *Wikipedia) search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(w.TopK))
	params.Set("format", "json")

	var sr wikiSearchResponse
	if err := w.get(ctx, params, &sr); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(sr.Query.Search))
	for _, s := range sr.Query.Search {
		titles = append(titles, s.Title)
	}
	if w.TopK > 0 && len(titles) > w.TopK {
		titles = titles[:w.TopK]
	}
	return titles, nil
}

func (w *Wikipedia) extract(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)
	params.Set("format", "json")

	var er wikiExtractResponse
	if err := w.get(ctx, params, &er); err != nil {
		return "", err
	}
	for _, p := range er.Query.Pages {
		if p.Missing != nil {
			continue
		}
		return strings.TrimSpace(p.Extract), nil
	}
	return "", nil
}

func (w *Wikipedia) get(ctx context.Context, params url.Values, dst any) error {
	lang := w.Language
	if lang == "" {
		lang = "en"
	}
	endpoint := strings.ReplaceAll(wikipediaAPIBase, "{lang}", lang) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := httputil.ReadLimited(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// truncate cuts s to at most max characters (runes).
func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
