package main

import (
	"log"
	"os"

	"github.com/getlantern/systray"

	"github.com/ibeckermayer/grab4me/internal/app"
	"github.com/ibeckermayer/grab4me/internal/auth"
	"github.com/ibeckermayer/grab4me/internal/config"
	"github.com/ibeckermayer/grab4me/internal/scheduler"
	"github.com/ibeckermayer/grab4me/internal/store"
	"github.com/ibeckermayer/grab4me/internal/tray"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load or create configuration
	cfg, err := config.Load()
	if err != nil {
		if os.IsNotExist(err) {
			// First run - create default config
			cfg = config.Default()
			if err := cfg.Save(); err != nil {
				log.Printf("Warning: could not save default config: %v", err)
			} else {
				path, _ := config.ConfigPath()
				log.Printf("Created default config at: %s", path)
			}
		} else {
			log.Printf("Warning: could not load config: %v (using defaults)", err)
			cfg = config.Default()
		}
	}

	// Initialize cookie store and auth manager
	cookieStorePath, err := auth.DefaultCookieStorePath()
	if err != nil {
		log.Fatalf("Failed to get cookie store path: %v", err)
	}
	cookieStore := auth.NewCookieStore(cookieStorePath)
	authManager := auth.NewManager(cookieStore)

	// Download history is best-effort; the app works without it
	var history *store.Store
	if dbPath, err := store.DefaultDBPath(); err != nil {
		log.Printf("Warning: could not resolve history db path: %v", err)
	} else if history, err = store.New(dbPath); err != nil {
		log.Printf("Warning: could not open history db: %v", err)
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	// Create app
	a := app.New(cfg, authManager, history)

	// Periodic session-expiry warning
	sched := scheduler.New()
	if err := sched.AddJob("session-check", a.ExpiryCheckSchedule(), a.CheckSessionExpiry); err != nil {
		log.Printf("Warning: could not schedule session check: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	log.Println("grab4me starting...")

	// Run systray (blocks until Quit)
	systray.Run(tray.OnReady(a), tray.OnExit)
}
