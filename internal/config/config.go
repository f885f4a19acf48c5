package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration
type Config struct {
	Version  int            `toml:"version"`
	Download DownloadConfig `toml:"download"`
	API      APIConfig      `toml:"api"`
	Session  SessionConfig  `toml:"session"`
}

// DownloadConfig controls where fetched media lands
type DownloadConfig struct {
	// Dir is the directory saved media is written to.
	// Empty means <user home>/Downloads/grab4me.
	Dir string `toml:"dir"`
}

// APIConfig holds the versioned parameters of the GraphQL lookup.
// These are external compatibility data, not logic: the backend may reject
// requests when they drift from what it expects, and updating them here must
// not require a code change.
type APIConfig struct {
	// OperationID is the GraphQL query identifier for TweetDetail.
	OperationID string `toml:"operation_id"`
	// BearerToken is the public web-client credential.
	BearerToken string `toml:"bearer_token"`
	// TimeoutSeconds bounds a single lookup request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// SessionConfig controls the injected browser session
type SessionConfig struct {
	// StartURL is where the session opens.
	StartURL string `toml:"start_url"`
	// ExpiryCheck is a cron schedule for the cookie-expiry warning job.
	ExpiryCheck string `toml:"expiry_check"`
	// Language mirrored into the API request headers.
	Language string `toml:"language"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Download: DownloadConfig{
			Dir: "",
		},
		API: APIConfig{
			OperationID:    "-Ls3CrSQNo2fRKH6i6Na1A",
			BearerToken:    "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA",
			TimeoutSeconds: 30,
		},
		Session: SessionConfig{
			StartURL:    "https://x.com/home",
			ExpiryCheck: "0 9 * * *",
			Language:    "en-US",
		},
	}
}

// DownloadDir returns the effective download directory.
func (c *Config) DownloadDir() (string, error) {
	if c.Download.Dir != "" {
		return c.Download.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads", "grab4me"), nil
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "grab4me"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the platform-appropriate cache directory
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "grab4me"), nil
}

// Load reads config from disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
