// Package session runs the injected browser session: a real, visible Chrome
// window carrying the user's x.com cookies, with the download button content
// script installed on every page. Button clicks arrive over a CDP binding
// and are handled on the Go side.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	browseropts "github.com/ibeckermayer/grab4me/internal/browser"
	"github.com/ibeckermayer/grab4me/internal/config"
	"github.com/ibeckermayer/grab4me/internal/downloader"
	"github.com/ibeckermayer/grab4me/internal/extract"
	"github.com/ibeckermayer/grab4me/internal/resolve"
	"github.com/ibeckermayer/grab4me/internal/store"
	"github.com/ibeckermayer/grab4me/internal/types"
)

// Session is one live browsing session with download buttons injected.
type Session struct {
	cfg      config.SessionConfig
	cookies  []*network.Cookie
	resolver *resolve.Resolver
	dl       *downloader.Downloader
	history  *store.Store // may be nil; history is best-effort

	// pageCtx targets the session tab; valid between Open and its return.
	pageCtx context.Context
}

// New creates a session. The cookies are the stored x.com session cookies to
// inject before navigation.
func New(cfg config.SessionConfig, cookies []*network.Cookie, r *resolve.Resolver, dl *downloader.Downloader, history *store.Store) *Session {
	return &Session{
		cfg:      cfg,
		cookies:  cookies,
		resolver: r,
		dl:       dl,
		history:  history,
	}
}

// Open launches the browser, injects cookies and the content script, and
// blocks until the browser window is closed or ctx is cancelled.
func (s *Session) Open(ctx context.Context) error {
	// Always headful: the whole point is the user browsing their own feed.
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, browseropts.Options(false)...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	s.pageCtx = browserCtx

	// Binding calls must not block the CDP event loop.
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if e, ok := ev.(*runtime.EventBindingCalled); ok && e.Name == downloadBinding {
			go s.handleDownloadRequest(e.Payload)
		}
	})

	err := chromedp.Run(browserCtx,
		chromedp.ActionFunc(s.injectCookies),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := runtime.AddBinding(downloadBinding).Do(ctx); err != nil {
				return err
			}
			_, err := page.AddScriptToEvaluateOnNewDocument(contentScript).Do(ctx)
			return err
		}),
		chromedp.Navigate(s.cfg.StartURL),
	)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	log.Printf("[g4m] session open at %s", s.cfg.StartURL)

	// Block until the browser goes away (window closed, or outer cancel).
	<-browserCtx.Done()
	log.Println("[g4m] session closed")
	return nil
}

// injectCookies sets the stored cookies in the browser context
func (s *Session) injectCookies(ctx context.Context) error {
	for _, c := range s.cookies {
		err := network.SetCookie(c.Name, c.Value).
			WithDomain(c.Domain).
			WithPath(c.Path).
			WithSecure(c.Secure).
			WithHTTPOnly(c.HTTPOnly).
			WithSameSite(c.SameSite).
			Do(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// handleDownloadRequest services one button click: parse the snapshot,
// resolve media, surface notices, and fire the per-item fetches.
func (s *Session) handleDownloadRequest(payload string) {
	var snap types.PostSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		log.Printf("[g4m] malformed snapshot payload: %v", err)
		s.notify("Download failed: could not read post data. Check console.")
		return
	}

	ref := extract.PostRef(snap)
	outcome := s.resolver.Resolve(s.pageCtx, snap, ref)

	for _, notice := range outcome.Notices {
		s.notify(notice)
	}

	// Fire-and-forget per item: initiation order follows DOM order, no
	// completion ordering, failures stay per-item.
	for _, rd := range outcome.Downloads {
		go s.fetch(rd, ref)
	}
}

// fetch downloads one resolved item and records the outcome.
func (s *Session) fetch(rd types.ResolvedDownload, ref types.PostRef) {
	log.Printf("[g4m] downloading %s as %s", rd.URL, rd.Filename)

	record := &store.Download{
		PostID:   ref.ID,
		Author:   ref.Author,
		Kind:     string(rd.Kind),
		URL:      rd.URL,
		Filename: rd.Filename,
	}

	path, err := s.dl.Download(s.pageCtx, rd.URL, rd.Filename)
	if err != nil {
		log.Printf("[g4m] download of %s failed: %v", rd.Filename, err)
		record.Status = store.StatusFailed
		record.Error = err.Error()
		s.notify("Download failed for " + rd.Filename + ". Check console.")
	} else {
		record.Status = store.StatusSaved
		record.Path = path
	}

	if s.history != nil {
		if err := s.history.Record(record); err != nil {
			log.Printf("[g4m] failed to record download history: %v", err)
		}
	}
}

// notify surfaces a user-facing message in the live page.
func (s *Session) notify(msg string) {
	script := "window.__g4mNotify(" + strconv.Quote(msg) + ")"
	if err := chromedp.Run(s.pageCtx, chromedp.Evaluate(script, nil)); err != nil {
		log.Printf("[g4m] failed to deliver notice %q: %v", msg, err)
	}
}
