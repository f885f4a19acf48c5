// Package extract derives post identity from raw DOM facts.
//
// X.com's markup is an external, versionless surface, so every rule here is
// best-effort: an ordered chain of fallbacks where missing fields degrade to
// sentinel values instead of errors. Callers check the sentinels.
package extract

import (
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ibeckermayer/grab4me/internal/types"
)

var idTokenRe = regexp.MustCompile(`^\d{10,}$`)

// PostRef extracts author, id and date for a post.
//
// Resolution order:
//  1. the timestamp-bearing permalink anchor (/{author}/status/{id})
//  2. any other /status/ anchor inside the post
//  3. a >=10-digit token in the article's aria-labelledby value (id only)
//  4. the @handle span under the User-Name region (author only)
func PostRef(snap types.PostSnapshot) types.PostRef {
	ref := types.PostRef{
		Author: types.UnknownUser,
		ID:     types.UnknownID,
		Date:   types.NoDate,
	}

	if d, ok := parsePostDate(snap.Datetime); ok {
		ref.Date = d
	}

	if author, id, ok := parseStatusPath(snap.PermalinkHref); ok {
		ref.Author, ref.ID = author, id
	} else if author, id, ok := parseStatusPath(snap.StatusHref); ok {
		ref.Author, ref.ID = author, id
	}

	if ref.ID == types.UnknownID {
		if id, ok := idFromAriaLabel(snap.AriaLabel); ok {
			ref.ID = id
		}
	}

	if ref.Author == types.UnknownUser && ref.ID != types.UnknownID {
		if handle, ok := authorFromHandle(snap.HandleText); ok {
			ref.Author = handle
		}
	}

	if ref.ID == types.UnknownID {
		log.Printf("[g4m] failed to extract post ID reliably")
	}
	if ref.Author == types.UnknownUser {
		log.Printf("[g4m] failed to extract author handle reliably")
	}
	if ref.Date == types.NoDate {
		log.Printf("[g4m] failed to extract post date reliably")
	}

	return ref
}

// parseStatusPath parses a permalink of shape /{author}/status/{id}.
// Accepts both relative hrefs and absolute URLs.
func parseStatusPath(href string) (author, id string, ok bool) {
	if href == "" {
		return "", "", false
	}

	path := href
	if u, err := url.Parse(href); err == nil {
		path = u.Path
	}

	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) < 3 || parts[1] != "status" {
		return "", "", false
	}

	id, _, _ = strings.Cut(parts[2], "?")
	if id == "" {
		return "", "", false
	}

	return parts[0], id, true
}

// idFromAriaLabel scans the article's accessibility labelling for the first
// token that looks like a post id.
func idFromAriaLabel(label string) (string, bool) {
	for _, tok := range strings.Fields(label) {
		if idTokenRe.MatchString(tok) {
			return tok, true
		}
	}
	return "", false
}

// authorFromHandle strips the @ off a handle span's text.
func authorFromHandle(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < 2 || !strings.HasPrefix(text, "@") {
		return "", false
	}
	return text[1:], true
}

// parsePostDate converts a machine-readable datetime attribute to YYYYMMDD.
func parsePostDate(datetime string) (string, bool) {
	if datetime == "" {
		return "", false
	}
	t, err := time.Parse(time.RFC3339, datetime)
	if err != nil {
		log.Printf("[g4m] could not parse post date %q: %v", datetime, err)
		return "", false
	}
	return t.Format("20060102"), true
}
