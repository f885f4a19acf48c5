// Package downloader fetches resolved media bytes and saves them locally.
package downloader

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ibeckermayer/grab4me/internal/types"
)

// Downloader fetches a resolved URL and writes the bytes to the download
// directory. One attempt per item; a failure is reported, not retried.
type Downloader struct {
	client    *http.Client
	userAgent string
	dir       string
}

// New creates a downloader that saves into dir.
func New(dir, userAgent string) *Downloader {
	return &Downloader{
		// No overall timeout: media files can be large. The response header
		// wait is bounded instead.
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		userAgent: userAgent,
		dir:       dir,
	}
}

// Dir returns the directory downloads are saved into.
func (d *Downloader) Dir() string {
	return d.dir
}

// Download fetches url and saves it under filename in the download directory.
// Returns the full path of the saved file.
func (d *Downloader) Download(ctx context.Context, url, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	// Mimic the browser the session runs in
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "video/mp4,image/*,*/*;q=0.8")
	req.Header.Set("Referer", "https://x.com/")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: server returned %s", types.ErrFetchFailed, resp.Status)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	path := filepath.Join(d.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: %v", types.ErrFetchFailed, err)
	}
	if closeErr != nil {
		os.Remove(path)
		return "", fmt.Errorf("close file: %w", closeErr)
	}

	log.Printf("[g4m] saved %s (%d bytes)", path, written)
	return path, nil
}
