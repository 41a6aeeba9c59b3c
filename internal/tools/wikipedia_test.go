// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wikiServer(t *testing.T, titles []string, extracts map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("list") == "search":
			limit := len(titles)
			fmt.Sscanf(q.Get("srlimit"), "%d", &limit)
			var items []string
			for i, title := range titles {
				if i >= limit {
					break
				}
				items = append(items, fmt.Sprintf(`{"title": %q}`, title))
			}
			fmt.Fprintf(w, `{"query": {"search": [%s]}}`, strings.Join(items, ","))
		case q.Get("prop") == "extracts":
			title := q.Get("titles")
			extract, ok := extracts[title]
			if !ok {
				fmt.Fprintf(w, `{"query": {"pages": {"-1": {"title": %q, "missing": ""}}}}`, title)
				return
			}
			fmt.Fprintf(w, `{"query": {"pages": {"42": {"title": %q, "extract": %q}}}}`, title, extract)
		default:
			http.Error(w, "bad request", http.StatusBadRequest)
		}
	}))
	t.Cleanup(ts.Close)

	old := wikipediaAPIBase
	wikipediaAPIBase = ts.URL
	t.Cleanup(func() { wikipediaAPIBase = old })
	return ts
}

func TestWikipediaRun(t *testing.T) {
	ts := wikiServer(t,
		[]string{"Capsicum", "Chili pepper", "Bell pepper"},
		map[string]string{
			"Capsicum":     "Capsicum is a genus of flowering plants.",
			"Chili pepper": "Chili peppers are varieties of the berry-fruit of Capsicum.",
			"Bell pepper":  "Never returned.",
		})

	w := &Wikipedia{Client: ts.Client(), Language: "en", TopK: 2, MaxChars: 2000}
	res := w.Run(context.Background(), "chilli plants")
	require.False(t, res.Failed, res.Output)

	want := "Page: Capsicum\nSummary: Capsicum is a genus of flowering plants.\n\n" +
		"Page: Chili pepper\nSummary: Chili peppers are varieties of the berry-fruit of Capsicum."
	assert.Equal(t, want, res.Output)
}

func TestWikipediaTruncates(t *testing.T) {
	long := strings.Repeat("é", 3000)
	ts := wikiServer(t, []string{"Long"}, map[string]string{"Long": long})

	w := &Wikipedia{Client: ts.Client(), TopK: 2, MaxChars: 100}
	res := w.Run(context.Background(), "long")
	require.False(t, res.Failed)
	assert.Equal(t, 100, utf8.RuneCountInString(res.Output))
	assert.True(t, utf8.ValidString(res.Output))
	assert.True(t, strings.HasPrefix(res.Output, "Page: Long\nSummary: "))
}

func TestWikipediaNoResult(t *testing.T) {
	ts := wikiServer(t, nil, nil)
	res := (&Wikipedia{Client: ts.Client(), TopK: 2, MaxChars: 2000}).Run(context.Background(), "xyzzy")
	assert.False(t, res.Failed)
	assert.Equal(t, NoWikipediaResult, res.Output)
}

func TestWikipediaMissingPagesAreSkipped(t *testing.T) {
	ts := wikiServer(t, []string{"Gone", "Here"}, map[string]string{"Here": "Present."})
	res := (&Wikipedia{Client: ts.Client(), TopK: 2, MaxChars: 2000}).Run(context.Background(), "q")
	require.False(t, res.Failed)
	assert.Equal(t, "Page: Here\nSummary: Present.", res.Output)
}

func TestWikipediaFailures(t *testing.T) {
	w := &Wikipedia{Client: http.DefaultClient, TopK: 2, MaxChars: 2000}
	assert.True(t, w.Run(context.Background(), " ").Failed)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()
	old := wikipediaAPIBase
	wikipediaAPIBase = ts.URL
	defer func() { wikipediaAPIBase = old }()

	res := (&Wikipedia{Client: ts.Client(), TopK: 2, MaxChars: 2000}).Run(context.Background(), "q")
	assert.True(t, res.Failed)
	assert.Contains(t, res.Output, "HTTP 500")
}

func TestWikipediaLanguageEndpoint(t *testing.T) {
	var host string
	old := wikipediaAPIBase
	wikipediaAPIBase = "http://{lang}.wiki.invalid/w/api.php"
	defer func() { wikipediaAPIBase = old }()

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		host = r.URL.Host
		return nil, fmt.Errorf("offline")
	})}
	res := (&Wikipedia{Client: client, Language: "de", TopK: 1, MaxChars: 10}).Run(context.Background(), "Berlin")
	assert.True(t, res.Failed)
	assert.Equal(t, "de.wiki.invalid", host)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
