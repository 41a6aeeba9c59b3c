// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dashboard serves the interactive research page. Each browser
// session keeps its own result list; actions within one session run one at
// a time while different sessions proceed independently. A session is
// created by the first action that changes state and is dropped once idle
// for longer than the configured TTL.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Researcher runs research queries. *agent.Assistant implements it.
type Researcher interface {
	Research(ctx context.Context, query string) (agent.Response, error)
	Tools() []agent.ToolInfo
}

// Server is the dashboard HTTP server.
type Server struct {
	researcher Researcher
	initErr    error
	cfg        types.DashboardConfig
	log        *slog.Logger
	now        func() time.Time
	page       *template.Template

	sessionTTL  time.Duration
	maxSessions int

	mu       sync.Mutex
	sessions map[string]*session
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and action logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithClock replaces time.Now for timestamps and export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New builds a Server. When initErr is non-nil the assistant could not be
// built: the page shows the error and no research call is ever made.
func New(researcher Researcher, initErr error, cfg types.DashboardConfig, opts ...Option) *Server {
	s := &Server{
		researcher: researcher,
		initErr:    initErr,
		cfg:        cfg,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		page:       template.Must(template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html")),
		sessions:   make(map[string]*session),

		sessionTTL:  cfg.SessionTTL,
		maxSessions: cfg.MaxSessions,
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = defaultSessionTTL
	}
	if s.maxSessions <= 0 {
		s.maxSessions = defaultMaxSessions
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.researcher == nil && s.initErr == nil {
		s.initErr = errors.New("assistant is not configured")
	}
	return s
}

// Router returns the HTTP handler for every dashboard route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.index)
	r.Post("/research", s.research)
	r.Post("/results/{id}/save", s.saveResult)
	r.Post("/results/{id}/delete", s.deleteResult)
	r.Get("/results/{id}/summary", s.resultSummary)
	r.Post("/clear", s.clear)
	r.Get("/export", s.export)
	r.Get("/api/results", s.apiResults)
	r.Get("/api/tools", s.apiTools)
	r.Get("/health", s.health)
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully and closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweep(sweepCtx)

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// sweep expires idle sessions until ctx is cancelled.
func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(max(min(s.sessionTTL/2, time.Minute), time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expire()
		}
	}
}

// Close discards every session.
func (s *Server) Close() {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	closeSessions(all)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if r.URL.Path == "/health" {
			return
		}
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
