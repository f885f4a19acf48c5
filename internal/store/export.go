package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ibeckermayer/grab4me/internal/config"
)

// ExportDir returns the path to the history export directory.
func ExportDir() (string, error) {
	cacheDir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "history"), nil
}

// ExportRecent serializes the most recent downloads to a timestamped JSON
// file for the tray's history viewer. Returns the path to the saved file.
func (s *Store) ExportRecent(limit int) (string, error) {
	downloads, err := s.Recent(limit)
	if err != nil {
		return "", err
	}

	dir, err := ExportDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	// Dashes instead of colons for filesystem compatibility
	filename := time.Now().Format("2006-01-02T15-04-05") + ".json"
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(downloads, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}

	return path, nil
}
