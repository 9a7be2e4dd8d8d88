// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists summary records in SQLite, keyed by a content hash
// of the canonical text, the model, and the caller's identity metadata.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// Entry is one cached summary.
type Entry struct {
	Key       string              `json:"key" yaml:"key"`
	Model     string              `json:"model" yaml:"model"`
	Source    string              `json:"source" yaml:"source"`
	Record    types.SummaryRecord `json:"record" yaml:"record"`
	Warnings  []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	CreatedAt time.Time           `json:"createdAt" yaml:"created_at"`
}

// Store manages the record cache database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at cfg.Path.
func Open(cfg types.CacheConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("cache path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			source TEXT,
			title TEXT,
			record TEXT NOT NULL,
			warnings TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Key hashes everything that determines a record: the canonical text, the
// model that summarizes it, and the identity fields merged into it.
func Key(text, model string, known types.KnownMetadata) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	h.Write([]byte{0})
	meta, _ := json.Marshal(known)
	h.Write(meta)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the entry stored under key. ok is false on a miss.
func (s *Store) Get(ctx context.Context, key string) (e Entry, ok bool, err error) {
	var record, warnings, created string
	var source sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT key, model, source, record, warnings, created_at FROM records WHERE key = ?`, key,
	).Scan(&e.Key, &e.Model, &source, &record, &warnings, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("querying cache: %w", err)
	}
	e.Source = source.String
	if err := decodeEntry(&e, record, warnings, created); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Put stores e under e.Key, replacing any previous entry. A zero
// CreatedAt is set to the current time.
func (s *Store) Put(ctx context.Context, e Entry) error {
	if e.Key == "" {
		return errors.New("cache entry has no key")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	record, err := json.Marshal(e.Record.Complete())
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	warnings, err := json.Marshal(e.Warnings)
	if err != nil {
		return fmt.Errorf("marshaling warnings: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO records (key, model, source, title, record, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Key, e.Model, e.Source, e.Record.Title, string(record), string(warnings),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 means 50.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, model, source, record, warnings, created_at FROM records
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var record, warnings, created string
		var source sql.NullString
		if err := rows.Scan(&e.Key, &e.Model, &source, &record, &warnings, &created); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}
		e.Source = source.String
		if err := decodeEntry(&e, record, warnings, created); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the entry under key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

func decodeEntry(e *Entry, record, warnings, created string) error {
	if err := json.Unmarshal([]byte(record), &e.Record); err != nil {
		return fmt.Errorf("decoding cached record %s: %w", e.Key, err)
	}
	e.Record = e.Record.Complete()
	if warnings != "" && warnings != "null" {
		if err := json.Unmarshal([]byte(warnings), &e.Warnings); err != nil {
			return fmt.Errorf("decoding cached warnings %s: %w", e.Key, err)
		}
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return fmt.Errorf("decoding cached timestamp %s: %w", e.Key, err)
	}
	e.CreatedAt = t
	return nil
}
