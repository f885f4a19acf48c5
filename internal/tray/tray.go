package tray

import (
	_ "embed"
	"log"

	"github.com/getlantern/systray"
	"github.com/pkg/browser"

	"github.com/ibeckermayer/grab4me/internal/app"
	"github.com/ibeckermayer/grab4me/internal/config"
)

//go:embed icon.png
var iconBytes []byte

// OnReady returns a systray onReady callback that sets up the menu.
func OnReady(a *app.App) func() {
	return func() {
		// Set icon (template icon for macOS menu bar styling)
		systray.SetTemplateIcon(iconBytes, iconBytes)
		systray.SetTitle("")
		systray.SetTooltip("grab4me - one-click media saving for your X timeline")

		// Auth status (disabled, just for display)
		var authStatusLabel string
		if a.IsAuthenticated() {
			authStatusLabel = "● Connected to X"
		} else {
			authStatusLabel = "○ Not connected"
		}
		mAuthStatus := systray.AddMenuItem(authStatusLabel, "Authentication status")
		mAuthStatus.Disable()

		// Auth action (Login / Logout)
		var authActionLabel string
		if a.IsAuthenticated() {
			authActionLabel = "Logout"
		} else {
			authActionLabel = "Login to X"
		}
		mAuthAction := systray.AddMenuItem(authActionLabel, "Login or logout from X")

		systray.AddSeparator()

		// Open the injected browsing session
		mOpenSession := systray.AddMenuItem("Open X Session", "Browse X with download buttons injected")

		systray.AddSeparator()

		mViewHistory := systray.AddMenuItem("View Download History", "Open recent download history")
		mOpenDownloads := systray.AddMenuItem("Open Downloads Folder", "Open the folder saved media lands in")

		// Edit config
		mEditConfig := systray.AddMenuItem("Edit Config", "Open config file in editor")

		// Reload config
		mReloadConfig := systray.AddMenuItem("Reload Config", "Reload configuration from disk")

		systray.AddSeparator()

		// Quit
		mQuit := systray.AddMenuItem("Quit", "Exit grab4me")

		// Helper to update auth UI
		updateAuthUI := func() {
			if a.IsAuthenticated() {
				mAuthStatus.SetTitle("● Connected to X")
				mAuthAction.SetTitle("Logout")
			} else {
				mAuthStatus.SetTitle("○ Not connected")
				mAuthAction.SetTitle("Login to X")
			}
		}

		// Handle menu clicks
		go func() {
			for {
				select {
				case <-mAuthAction.ClickedCh:
					if a.IsAuthenticated() {
						if err := a.TriggerLogout(); err != nil {
							log.Printf("Logout error: %v", err)
						}
					} else {
						if err := a.TriggerLogin(); err != nil {
							log.Printf("Login error: %v", err)
						}
					}
					updateAuthUI()

				case <-mOpenSession.ClickedCh:
					// Blocks until the browser window closes; keep the menu responsive.
					go func() {
						if err := a.OpenSession(); err != nil {
							log.Printf("Session error: %v", err)
						}
					}()

				case <-mViewHistory.ClickedCh:
					if err := a.ViewHistory(); err != nil {
						log.Printf("View history error: %v", err)
					}

				case <-mOpenDownloads.ClickedCh:
					if err := a.OpenDownloads(); err != nil {
						log.Printf("Open downloads error: %v", err)
					}

				case <-mEditConfig.ClickedCh:
					path, err := config.ConfigPath()
					if err != nil {
						log.Printf("Failed to get config path: %v", err)
						continue
					}
					if err := browser.OpenFile(path); err != nil {
						log.Printf("Failed to open config file: %v", err)
					}

				case <-mReloadConfig.ClickedCh:
					if err := a.ReloadConfig(); err != nil {
						log.Printf("Failed to reload config: %v", err)
					}

				case <-mQuit.ClickedCh:
					systray.Quit()
				}
			}
		}()
	}
}

// OnExit is the systray onExit callback.
func OnExit() {
	log.Println("grab4me shutting down...")
}
