package bucketblog

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding a snapshot of the internal cache, so
// a restarted process starts warm and only refetches changed documents.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL with a busy timeout so the write-through after a sync never fails
	// on a concurrent reader; synchronous=NORMAL is safe with WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
    key TEXT PRIMARY KEY,
    last_modified INTEGER NOT NULL,
    published INTEGER NOT NULL,
    id TEXT NOT NULL,
    post_path TEXT NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    content TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    read_time TEXT NOT NULL
);
`)
	return err
}

// LoadEntries returns every stored entry ordered by key.
func (s *Store) LoadEntries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, last_modified, published, id, post_path, title, excerpt, content, date, tags, read_time FROM entries ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                       Entry
			lastModified, published int64
			tags                    string
		)
		if err := rows.Scan(&e.Key, &lastModified, &published, &e.Post.ID, &e.Post.PostPath,
			&e.Post.Title, &e.Post.Excerpt, &e.Post.Content, &e.Post.Date, &tags, &e.Post.ReadTime); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &e.Post.Tags); err != nil {
			return nil, err
		}
		e.LastModified = fromMillis(lastModified)
		e.Published = fromMillis(published)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveEntry upserts an entry.
func (s *Store) SaveEntry(ctx context.Context, e Entry) error {
	tags := e.Post.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO entries (key, last_modified, published, id, post_path, title, excerpt, content, date, tags, read_time) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Key, millis(e.LastModified), millis(e.Published), e.Post.ID, e.Post.PostPath,
		e.Post.Title, e.Post.Excerpt, e.Post.Content, e.Post.Date, string(encoded), e.Post.ReadTime)
	return err
}

// DeleteEntry removes an entry by storage key.
func (s *Store) DeleteEntry(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key)
	return err
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
