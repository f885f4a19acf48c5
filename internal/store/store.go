// Package store keeps a local history of triggered downloads.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ibeckermayer/grab4me/internal/config"
)

// Download outcome states.
const (
	StatusSaved  = "saved"
	StatusFailed = "failed"
)

// Download is one recorded download attempt.
type Download struct {
	ID        int64     `json:"id"`
	PostID    string    `json:"post_id"`
	Author    string    `json:"author"`
	Kind      string    `json:"kind"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default location for the history database.
func DefaultDBPath() (string, error) {
	cacheDir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "history.db"), nil
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id TEXT NOT NULL,
		author TEXT,
		kind TEXT,
		url TEXT NOT NULL,
		filename TEXT NOT NULL,
		path TEXT,
		status TEXT NOT NULL,
		error TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at);
	CREATE INDEX IF NOT EXISTS idx_downloads_post_id ON downloads(post_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record inserts one download attempt.
func (s *Store) Record(d *Download) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	res, err := s.db.Exec(`
		INSERT INTO downloads (post_id, author, kind, url, filename, path, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.PostID, d.Author, d.Kind, d.URL, d.Filename, d.Path, d.Status, d.Error, d.CreatedAt)
	if err != nil {
		return err
	}

	d.ID, _ = res.LastInsertId()
	return nil
}

// Recent returns the most recent download attempts, newest first.
func (s *Store) Recent(limit int) ([]Download, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, author, kind, url, filename, path, status, error, created_at
		FROM downloads
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downloads []Download
	for rows.Next() {
		var d Download
		err := rows.Scan(&d.ID, &d.PostID, &d.Author, &d.Kind, &d.URL,
			&d.Filename, &d.Path, &d.Status, &d.Error, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
