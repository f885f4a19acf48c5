package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/pkg/browser"

	"github.com/ibeckermayer/grab4me/internal/api"
	"github.com/ibeckermayer/grab4me/internal/auth"
	browseropts "github.com/ibeckermayer/grab4me/internal/browser"
	"github.com/ibeckermayer/grab4me/internal/config"
	"github.com/ibeckermayer/grab4me/internal/downloader"
	"github.com/ibeckermayer/grab4me/internal/resolve"
	"github.com/ibeckermayer/grab4me/internal/session"
	"github.com/ibeckermayer/grab4me/internal/store"
)

// historyExportLimit caps how many entries the history viewer shows.
const historyExportLimit = 100

// App holds the application state.
type App struct {
	mu          sync.Mutex
	authManager *auth.Manager // immutable after creation
	history     *store.Store  // immutable after creation, may be nil

	config        *config.Config
	sessionActive bool
}

// New creates a new App instance.
func New(cfg *config.Config, authManager *auth.Manager, history *store.Store) *App {
	return &App{
		config:      cfg,
		authManager: authManager,
		history:     history,
	}
}

// getConfig returns the current config under lock.
func (a *App) getConfig() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config
}

// IsAuthenticated checks if x.com credentials are stored.
func (a *App) IsAuthenticated() bool {
	return a.authManager.IsAuthenticated()
}

// TriggerLogin starts the x.com login flow.
func (a *App) TriggerLogin() error {
	log.Println("Login triggered - opening browser for x.com authentication")
	if err := a.authManager.Login(context.Background()); err != nil {
		log.Printf("Login failed: %v", err)
		return err
	}
	log.Println("Login successful - cookies saved")
	return nil
}

// TriggerLogout clears stored x.com credentials.
func (a *App) TriggerLogout() error {
	log.Println("Logout triggered - clearing stored cookies")
	if err := a.authManager.Logout(); err != nil {
		log.Printf("Logout failed: %v", err)
		return err
	}
	log.Println("Logout successful - cookies cleared")
	return nil
}

// OpenSession launches the injected browsing session and blocks until the
// browser window is closed. Only one session runs at a time.
func (a *App) OpenSession() error {
	a.mu.Lock()
	if a.sessionActive {
		a.mu.Unlock()
		return fmt.Errorf("a session is already open")
	}
	a.sessionActive = true
	cfg := a.config
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.sessionActive = false
		a.mu.Unlock()
	}()

	if !a.authManager.IsAuthenticated() {
		log.Println("Not authenticated - please login to X first")
		return fmt.Errorf("not logged in to X")
	}

	cookies, err := a.authManager.GetCookies()
	if err != nil {
		return fmt.Errorf("failed to get cookies: %w", err)
	}

	downloadDir, err := cfg.DownloadDir()
	if err != nil {
		return fmt.Errorf("failed to resolve download dir: %w", err)
	}

	client := api.NewClient(cfg.API, browseropts.DefaultUserAgent, cfg.Session.Language)
	resolver := resolve.New(client, a.authManager.CSRFToken)
	dl := downloader.New(downloadDir, browseropts.DefaultUserAgent)

	sess := session.New(cfg.Session, cookies, resolver, dl, a.history)

	log.Println("Opening X session with download buttons...")
	return sess.Open(context.Background())
}

// ViewHistory exports recent download history and opens it.
func (a *App) ViewHistory() error {
	if a.history == nil {
		return fmt.Errorf("history store unavailable")
	}

	path, err := a.history.ExportRecent(historyExportLimit)
	if err != nil {
		log.Printf("Failed to export history: %v", err)
		return err
	}

	log.Printf("Opening history: %s", path)
	return browser.OpenFile(path)
}

// OpenDownloads opens the download directory in the file explorer.
func (a *App) OpenDownloads() error {
	dir, err := a.getConfig().DownloadDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return browser.OpenFile(dir)
}

// CheckSessionExpiry warns when the stored session cookies are gone or about
// to expire. Wired as a scheduled job.
func (a *App) CheckSessionExpiry(ctx context.Context) error {
	if !a.authManager.IsAuthenticated() {
		log.Println("Session check: not logged in (or cookies expired) - downloads needing API lookups will fail")
		return nil
	}

	expiry := a.authManager.SessionExpiry()
	if !expiry.IsZero() && time.Until(expiry) < 48*time.Hour {
		log.Printf("Session check: cookies expire at %s - consider logging in again soon", expiry.Format(time.RFC1123))
	}
	return nil
}

// ReloadConfig reloads the configuration from disk. The new config takes
// effect for the next opened session.
func (a *App) ReloadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.config = cfg
	a.mu.Unlock()

	log.Println("Configuration reloaded")
	return nil
}

// ExpiryCheckSchedule returns the cron schedule for the session-expiry job.
func (a *App) ExpiryCheckSchedule() string {
	return a.getConfig().Session.ExpiryCheck
}
