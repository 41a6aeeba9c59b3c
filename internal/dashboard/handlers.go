// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/internal/record"
	"github.com/pdiddy/research-assistant/internal/tools"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var funcs = template.FuncMap{
	"when": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"isLink": func(s string) bool {
		return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
	},
}

type pageData struct {
	InitError string
	Tools     []agent.ToolInfo
	Entries   []types.ResearchEntry
	Stats     history.Stats
	LastLabel string
	Flashes   []flash
	Query     string
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(r)
	if sess != nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
	}
	s.render(w, r, sess, http.StatusOK)
}

// render writes the page for sess, which may be nil for a visitor without a
// session. The caller holds sess.mu. extra flashes are shown after the
// session's own.
func (s *Server) render(w http.ResponseWriter, r *http.Request, sess *session, status int, extra ...flash) {
	var data pageData
	if s.initErr != nil {
		data.InitError = s.initErr.Error()
	} else {
		data.Tools = s.researcher.Tools()
	}
	data.LastLabel = lastLabel(time.Time{}, s.now())

	if sess != nil {
		data.Flashes = sess.takeFlashes()
		data.Query = sess.query

		entries, err := sess.store.List(r.Context())
		if err != nil {
			s.log.Error("listing results", "error", err)
			data.Flashes = append(data.Flashes, flash{Kind: flashError, Message: "Could not load results: " + err.Error()})
		}
		data.Entries = entries

		if st, err := sess.store.Stats(r.Context()); err == nil {
			data.Stats = st
			data.LastLabel = lastLabel(st.Last, s.now())
		}
	}
	data.Flashes = append(data.Flashes, extra...)

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.log.Error("rendering page", "error", err)
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func lastLabel(last, now time.Time) string {
	if last.IsZero() {
		return "Never"
	}
	ly, lm, ld := last.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	if ly == ny && lm == nm && ld == nd {
		return "Today"
	}
	return last.Format("2006-01-02")
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) research(w http.ResponseWriter, r *http.Request) {
	if s.initErr != nil {
		sess := s.lookup(r)
		if sess != nil {
			sess.mu.Lock()
			defer sess.mu.Unlock()
		}
		s.render(w, r, sess, http.StatusServiceUnavailable,
			flash{Kind: flashError, Message: "Failed to initialize the model. Please check your API key and try again."})
		return
	}

	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	query := strings.TrimSpace(r.FormValue("query"))
	sess.query = query
	if query == "" {
		sess.addFlash(flashWarning, "Please enter a research query.")
		s.redirectHome(w, r)
		return
	}

	resp, err := s.researcher.Research(r.Context(), query)
	if err != nil {
		s.log.Warn("research failed", "query", query, "error", err)
		sess.addFlash(flashError, researchErrorMessage(err, resp.Raw))
		s.redirectHome(w, r)
		return
	}

	if _, err := sess.store.Add(r.Context(), types.ResearchEntry{
		Query:     query,
		Response:  resp.Record,
		Raw:       resp.Raw,
		Timestamp: s.now(),
	}); err != nil {
		sess.addFlash(flashError, "Could not store the result: "+err.Error())
		s.redirectHome(w, r)
		return
	}
	sess.query = ""
	sess.addFlash(flashSuccess, "Research completed!")
	s.redirectHome(w, r)
}

// rawPreviewRunes bounds the model output quoted in a parse-failure flash.
const rawPreviewRunes = 500

func researchErrorMessage(err error, raw string) string {
	var pe *record.ParseError
	if !errors.As(err, &pe) {
		return "Error during research: " + err.Error()
	}
	msg := "Error during research: the answer did not match the expected format (" + err.Error() + ")"
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return msg
	}
	if r := []rune(raw); len(r) > rawPreviewRunes {
		raw = string(r[:rawPreviewRunes]) + "..."
	}
	return msg + ". Raw output: " + raw
}

func (s *Server) saveResult(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	entry, err := sess.store.Get(r.Context(), id)
	if err != nil {
		sess.addFlash(flashError, "Error saving: "+err.Error())
		s.redirectHome(w, r)
		return
	}
	pos, err := sess.store.Position(r.Context(), id)
	if err != nil {
		sess.addFlash(flashError, "Error saving: "+err.Error())
		s.redirectHome(w, r)
		return
	}

	data, err := json.MarshalIndent(entry.Response, "", "  ")
	if err != nil {
		sess.addFlash(flashError, "Error saving: "+err.Error())
		s.redirectHome(w, r)
		return
	}
	name := fmt.Sprintf("research_%d.txt", pos)
	if err := tools.AppendRecord(filepath.Join(s.cfg.SaveDir, name), string(data), s.now()); err != nil {
		s.log.Warn("saving result", "id", id, "error", err)
		sess.addFlash(flashError, "Error saving: "+err.Error())
		s.redirectHome(w, r)
		return
	}
	sess.addFlash(flashSuccess, "Saved to "+name+"!")
	s.redirectHome(w, r)
}

func (s *Server) deleteResult(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := sess.store.Delete(r.Context(), id); err != nil {
		sess.addFlash(flashError, "Could not delete result: "+err.Error())
	}
	s.redirectHome(w, r)
}

func (s *Server) resultSummary(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(r)
	if sess == nil {
		http.Error(w, "result not found", http.StatusNotFound)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	entry, err := sess.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, history.ErrNotFound) {
		http.Error(w, "result not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(entry.Response.Summary))
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.store.Clear(r.Context()); err != nil {
		sess.addFlash(flashError, "Could not clear history: "+err.Error())
	}
	sess.query = ""
	s.redirectHome(w, r)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	contentType := "application/json"
	switch format {
	case "", history.FormatJSON:
		format = history.FormatJSON
	case history.FormatYAML, "yml":
		format = history.FormatYAML
		contentType = "application/yaml"
	default:
		http.Error(w, fmt.Sprintf("unsupported export format %q", format), http.StatusBadRequest)
		return
	}

	now := s.now()
	var buf bytes.Buffer
	if sess := s.lookup(r); sess != nil {
		sess.mu.Lock()
		err := sess.store.Export(r.Context(), &buf, format, now)
		sess.mu.Unlock()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	} else if err := history.WriteExport(&buf, format, types.ExportDocument{Timestamp: now, ResearchResults: []types.ResearchEntry{}}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", history.ExportFilename(format, now)))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) apiResults(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(r)
	if sess == nil {
		writeJSONStatus(w, map[string]any{"results": []types.ResearchEntry{}}, http.StatusOK)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	q := r.URL.Query().Get("q")
	entries, err := sess.store.Search(r.Context(), q)
	if err != nil {
		writeJSONStatus(w, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []types.ResearchEntry{}
	}
	writeJSONStatus(w, map[string]any{"results": entries}, http.StatusOK)
}

func (s *Server) apiTools(w http.ResponseWriter, _ *http.Request) {
	if s.initErr != nil {
		writeJSONStatus(w, map[string]any{"tools": []agent.ToolInfo{}, "error": s.initErr.Error()}, http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, map[string]any{"tools": s.researcher.Tools()}, http.StatusOK)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok", "ready": s.initErr == nil}
	if s.initErr != nil {
		body["error"] = s.initErr.Error()
	}
	writeJSONStatus(w, body, http.StatusOK)
}

func writeJSONStatus(w http.ResponseWriter, value any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}
