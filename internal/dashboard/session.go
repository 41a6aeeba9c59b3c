// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-assistant/internal/history"
)

const sessionCookie = "ra_session"

// Session limits used when the config leaves them unset.
const (
	defaultSessionTTL  = 2 * time.Hour
	defaultMaxSessions = 1000
)

// Flash kinds, rendered as banner styles.
const (
	flashSuccess = "success"
	flashWarning = "warning"
	flashError   = "error"
)

type flash struct {
	Kind    string
	Message string
}

// session is one browser's state. mu serializes the session's actions.
type session struct {
	mu      sync.Mutex
	store   *history.Store
	flashes []flash
	// query is the last submitted text, shown again after a failure.
	query string

	// lastSeen is guarded by Server.mu.
	lastSeen time.Time
}

func (sess *session) addFlash(kind, message string) {
	sess.flashes = append(sess.flashes, flash{Kind: kind, Message: message})
}

func (sess *session) takeFlashes() []flash {
	f := sess.flashes
	sess.flashes = nil
	return f
}

// lookup returns the caller's existing session, or nil. It never creates
// one, so read-only requests from cookieless clients cost nothing.
func (s *Server) lookup(r *http.Request) *session {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[c.Value]
	if !ok {
		return nil
	}
	sess.lastSeen = s.now()
	return sess
}

// session returns the caller's session, creating it and setting the cookie
// when the request carries none or an unknown one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session, error) {
	if sess := s.lookup(r); sess != nil {
		return sess, nil
	}

	store, err := history.NewStore()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	now := s.now()
	sess := &session{store: store, lastSeen: now}

	s.mu.Lock()
	evicted := s.expireLocked(now, 1)
	s.sessions[id] = sess
	s.mu.Unlock()
	closeSessions(evicted)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Debug("session created", "session", id, "evicted", len(evicted))
	return sess, nil
}

// expire drops sessions idle for longer than the TTL.
func (s *Server) expire() {
	s.mu.Lock()
	evicted := s.expireLocked(s.now(), 0)
	s.mu.Unlock()
	if len(evicted) > 0 {
		s.log.Debug("sessions expired", "count", len(evicted))
	}
	closeSessions(evicted)
}

// expireLocked removes idle sessions and then, least recently used first,
// enough others to leave room for reserve new ones under the cap. The
// caller holds s.mu and closes the returned sessions after releasing it.
func (s *Server) expireLocked(now time.Time, reserve int) []*session {
	var evicted []*session
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.sessionTTL {
			evicted = append(evicted, sess)
			delete(s.sessions, id)
		}
	}

	over := len(s.sessions) + reserve - s.maxSessions
	if over <= 0 {
		return evicted
	}
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.sessions[ids[i]].lastSeen.Before(s.sessions[ids[j]].lastSeen)
	})
	for _, id := range ids[:min(over, len(ids))] {
		evicted = append(evicted, s.sessions[id])
		delete(s.sessions, id)
	}
	return evicted
}

// closeSessions waits for each session's running action before closing its
// store.
func closeSessions(sessions []*session) {
	for _, sess := range sessions {
		sess.mu.Lock()
		sess.store.Close()
		sess.mu.Unlock()
	}
}
