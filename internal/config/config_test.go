package config

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Version != 1 {
		t.Errorf("Version = %d", cfg.Version)
	}
	if cfg.API.OperationID == "" {
		t.Error("OperationID empty")
	}
	if cfg.API.BearerToken == "" {
		t.Error("BearerToken empty")
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Session.StartURL != "https://x.com/home" {
		t.Errorf("StartURL = %q", cfg.Session.StartURL)
	}
	if cfg.Session.Language != "en-US" {
		t.Errorf("Language = %q", cfg.Session.Language)
	}
	if cfg.Session.ExpiryCheck == "" {
		t.Error("ExpiryCheck empty")
	}
}

func TestDownloadDir_Explicit(t *testing.T) {
	cfg := Default()
	cfg.Download.Dir = "/tmp/custom-media"

	dir, err := cfg.DownloadDir()
	if err != nil {
		t.Fatalf("DownloadDir: %v", err)
	}
	if dir != "/tmp/custom-media" {
		t.Errorf("dir = %q", dir)
	}
}

func TestDownloadDir_Default(t *testing.T) {
	cfg := Default()

	dir, err := cfg.DownloadDir()
	if err != nil {
		t.Fatalf("DownloadDir: %v", err)
	}
	if filepath.Base(dir) != "grab4me" {
		t.Errorf("dir = %q, want a grab4me subdirectory", dir)
	}
	if filepath.Base(filepath.Dir(dir)) != "Downloads" {
		t.Errorf("dir = %q, want it under Downloads", dir)
	}
}
