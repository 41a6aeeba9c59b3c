// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps the research results of one dashboard session.
//
// Each Store is a private in-memory SQLite database. Nothing is written to
// disk and the results are gone when the Store is closed or the process
// exits.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("research entry not found")

// Store holds research entries in insertion order.
type Store struct {
	db *sql.DB
}

// NewStore opens a fresh in-memory database and creates the schema.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is its own database, so the pool is
	// pinned to a single connection that is never recycled.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database and discards its contents.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			query TEXT NOT NULL,
			topic TEXT NOT NULL,
			summary TEXT NOT NULL,
			sources TEXT NOT NULL,
			tools_used TEXT NOT NULL,
			raw TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Add stores e and returns it as stored. An empty ID is replaced by a new
// UUID and a zero Timestamp by the current time.
func (s *Store) Add(ctx context.Context, e types.ResearchEntry) (types.ResearchEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().Round(0)
	}
	if e.Response.Sources == nil {
		e.Response.Sources = []string{}
	}
	if e.Response.ToolsUsed == nil {
		e.Response.ToolsUsed = []string{}
	}

	sources, err := json.Marshal(e.Response.Sources)
	if err != nil {
		return types.ResearchEntry{}, fmt.Errorf("encoding sources: %w", err)
	}
	toolsUsed, err := json.Marshal(e.Response.ToolsUsed)
	if err != nil {
		return types.ResearchEntry{}, fmt.Errorf("encoding tools_used: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entries (id, query, topic, summary, sources, tools_used, raw, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Query, e.Response.Topic, e.Response.Summary,
		string(sources), string(toolsUsed), e.Raw, e.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.ResearchEntry{}, fmt.Errorf("inserting entry: %w", err)
	}
	return e, nil
}

const selectColumns = `id, query, topic, summary, sources, tools_used, raw, created_at`

// List returns every entry, newest first.
func (s *Store) List(ctx context.Context) ([]types.ResearchEntry, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM entries ORDER BY seq DESC`)
}

// Chronological returns every entry, oldest first.
func (s *Store) Chronological(ctx context.Context) ([]types.ResearchEntry, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM entries ORDER BY seq ASC`)
}

// Search returns entries whose query, topic or summary contains text
// (case-insensitive), newest first.
func (s *Store) Search(ctx context.Context, text string) ([]types.ResearchEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.List(ctx)
	}
	pattern := "%" + escapeLike(text) + "%"
	return s.query(ctx,
		`SELECT `+selectColumns+` FROM entries
		 WHERE query LIKE ? ESCAPE '\' OR topic LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\'
		 ORDER BY seq DESC`,
		pattern, pattern, pattern)
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.ResearchEntry, error) {
	entries, err := s.query(ctx, `SELECT `+selectColumns+` FROM entries WHERE id = ?`, id)
	if err != nil {
		return types.ResearchEntry{}, err
	}
	if len(entries) == 0 {
		return types.ResearchEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entries[0], nil
}

// Position returns the 1-based position of the entry in List order.
func (s *Store) Position(ctx context.Context, id string) (int, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT seq FROM entries WHERE id = ?`, id).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up entry: %w", err)
	}
	var newer int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM entries WHERE seq > ?`, seq).Scan(&newer); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return newer + 1, nil
}

// Delete removes the entry with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	return nil
}

// Count returns the number of entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Stats summarizes a session's results.
type Stats struct {
	Total int
	// Last is the newest entry's timestamp, zero when there are none.
	Last time.Time
}

// Stats returns the entry count and the newest timestamp.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		st   Stats
		last sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*), (SELECT created_at FROM entries ORDER BY seq DESC LIMIT 1) FROM entries`,
	).Scan(&st.Total, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("reading stats: %w", err)
	}
	if last.Valid {
		if t, err := time.Parse(time.RFC3339Nano, last.String); err == nil {
			st.Last = t
		}
	}
	return st, nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]types.ResearchEntry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []types.ResearchEntry
	for rows.Next() {
		var (
			e                             types.ResearchEntry
			sources, toolsUsed, createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Query, &e.Response.Topic, &e.Response.Summary,
			&sources, &toolsUsed, &e.Raw, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &e.Response.Sources); err != nil {
			return nil, fmt.Errorf("decoding sources of %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(toolsUsed), &e.Response.ToolsUsed); err != nil {
			return nil, fmt.Errorf("decoding tools_used of %s: %w", e.ID, err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("decoding timestamp of %s: %w", e.ID, err)
		}
		e.Timestamp = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
