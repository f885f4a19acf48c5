package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"

	"github.com/ibeckermayer/grab4me/internal/config"
)

// CSRFCookieName is the session cookie the API mirrors into a request header.
const CSRFCookieName = "ct0"

// CookieStore handles storage of x.com session cookies
type CookieStore struct {
	path string
}

// StoredCookies represents the persisted cookie data
type StoredCookies struct {
	Cookies    []*network.Cookie `json:"cookies"`
	CapturedAt time.Time         `json:"captured_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// NewCookieStore creates a cookie store at the given path
func NewCookieStore(path string) *CookieStore {
	return &CookieStore{path: path}
}

// DefaultCookieStorePath returns the default path for cookie storage
func DefaultCookieStorePath() (string, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cookies.json"), nil
}

// Save persists cookies to disk
// TODO: Encrypt cookies at rest
func (cs *CookieStore) Save(cookies []*network.Cookie) error {
	dir := filepath.Dir(cs.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	stored := StoredCookies{
		Cookies:    cookies,
		CapturedAt: time.Now(),
		ExpiresAt:  earliestAuthExpiry(cookies),
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(cs.path, data, 0600)
}

// earliestAuthExpiry finds the earliest expiration among the cookies the
// session actually depends on.
func earliestAuthExpiry(cookies []*network.Cookie) time.Time {
	var earliest time.Time
	for _, c := range cookies {
		if c.Name != "auth_token" && c.Name != CSRFCookieName {
			continue
		}
		exp := time.Unix(int64(c.Expires), 0)
		if earliest.IsZero() || exp.Before(earliest) {
			earliest = exp
		}
	}
	return earliest
}

// Load retrieves cookies from disk
func (cs *CookieStore) Load() (*StoredCookies, error) {
	data, err := os.ReadFile(cs.path)
	if err != nil {
		return nil, err
	}

	var stored StoredCookies
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	return &stored, nil
}

// IsValid checks if stored cookies are still usable: not expired and carrying
// both the auth token and the CSRF cookie.
func (cs *CookieStore) IsValid() bool {
	stored, err := cs.Load()
	if err != nil {
		return false
	}

	if time.Now().After(stored.ExpiresAt) {
		return false
	}

	hasAuthToken := false
	hasCSRF := false
	for _, c := range stored.Cookies {
		switch c.Name {
		case "auth_token":
			hasAuthToken = true
		case CSRFCookieName:
			hasCSRF = true
		}
	}

	return hasAuthToken && hasCSRF
}

// ExpiresAt returns when the stored session cookies expire.
// Returns the zero time when no cookies are stored.
func (cs *CookieStore) ExpiresAt() time.Time {
	stored, err := cs.Load()
	if err != nil {
		return time.Time{}
	}
	return stored.ExpiresAt
}

// CSRFToken returns the value of the stored ct0 cookie, or "" when absent.
func (cs *CookieStore) CSRFToken() string {
	stored, err := cs.Load()
	if err != nil {
		return ""
	}
	for _, c := range stored.Cookies {
		if c.Name == CSRFCookieName {
			return c.Value
		}
	}
	return ""
}

// Clear removes stored cookies
func (cs *CookieStore) Clear() error {
	return os.Remove(cs.path)
}

// GetXCookies returns only the x.com cookies for injection into a session
func (cs *CookieStore) GetXCookies() ([]*network.Cookie, error) {
	stored, err := cs.Load()
	if err != nil {
		return nil, err
	}

	var xCookies []*network.Cookie
	for _, c := range stored.Cookies {
		if c.Domain == ".x.com" || c.Domain == "x.com" {
			xCookies = append(xCookies, c)
		}
	}

	return xCookies, nil
}
