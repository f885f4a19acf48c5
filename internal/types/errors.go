package types

import "errors"

// Failure classes surfaced to the user as in-page notices.
var (
	// ErrNoCSRFToken is returned when the session's ct0 cookie is missing,
	// which makes authenticated API lookups impossible.
	ErrNoCSRFToken = errors.New("session CSRF token (ct0 cookie) not found")

	// ErrFetchFailed is returned when fetching the final media bytes fails.
	ErrFetchFailed = errors.New("media fetch failed")
)
