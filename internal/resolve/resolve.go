// Package resolve turns a post's DOM snapshot into downloadable media.
//
// Videos are considered first, in DOM order. A blob-backed video routes
// through the authenticated API lookup; any blob video ends processing for
// the post once handled, whether or not the lookup succeeded. Images are only
// considered when no video produced a download.
package resolve

import (
	"context"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/ibeckermayer/grab4me/internal/types"
)

// VideoLookup resolves a direct video URL for a post via the API.
// It returns "" (and no error) when the post holds no suitable video.
type VideoLookup interface {
	ResolveVideoURL(ctx context.Context, postID, csrfToken string) (string, error)
}

// Resolver decides, per post, what can be downloaded and under what name.
type Resolver struct {
	lookup VideoLookup
	csrf   func() string // reads the session's ct0 cookie
}

// New creates a resolver backed by the given API lookup and CSRF source.
func New(lookup VideoLookup, csrf func() string) *Resolver {
	return &Resolver{lookup: lookup, csrf: csrf}
}

// Outcome is everything a single click produced: zero or more resolved
// downloads plus the user-facing notices accumulated along the way.
type Outcome struct {
	Downloads []types.ResolvedDownload
	Notices   []string
}

var formatTokenRe = regexp.MustCompile(`format=([a-zA-Z]+)`)

// Resolve enumerates a post's media and resolves each into a download.
// It never returns an error: failures become notices and log lines, confined
// to the post at hand.
func (r *Resolver) Resolve(ctx context.Context, snap types.PostSnapshot, ref types.PostRef) Outcome {
	var out Outcome

	if !ref.HasID() {
		log.Printf("[g4m] could not determine post ID, cannot proceed with download")
		out.Notices = append(out.Notices, "Could not determine post ID. Cannot proceed with download.")
		return out
	}

	log.Printf("[g4m] download triggered: author=%s id=%s date=%s videos=%d images=%d",
		ref.Author, ref.ID, ref.Date, len(snap.Videos), len(snap.Images))

	if done := r.resolveVideos(ctx, snap, ref, &out); done {
		return out
	}

	if len(out.Downloads) > 0 {
		// At least one video resolved; images are not attempted.
		return out
	}

	r.resolveImages(snap, ref, &out)

	if len(out.Downloads) == 0 {
		log.Printf("[g4m] no downloadable media found in post %s", ref.ID)
		out.Notices = append(out.Notices, "No downloadable media found in this post.")
	}

	return out
}

// resolveVideos walks the post's video elements in DOM order. The returned
// bool is true when processing of the whole post must stop: that happens for
// the first blob-backed video regardless of lookup outcome, and for a missing
// CSRF token.
func (r *Resolver) resolveVideos(ctx context.Context, snap types.PostSnapshot, ref types.PostRef, out *Outcome) bool {
	for i, v := range snap.Videos {
		src := v.Src
		if src == "" {
			src = v.SourceSrc
		}

		if src == "" {
			log.Printf("[g4m] video #%d has no usable src", i+1)
			continue
		}

		if !strings.HasPrefix(src, "blob:") {
			out.Downloads = append(out.Downloads, types.ResolvedDownload{
				URL:      src,
				Filename: Filename(ref, "mp4", i, len(snap.Videos)),
				Kind:     types.MediaVideo,
			})
			continue
		}

		log.Printf("[g4m] video #%d is a blob URL, attempting API lookup", i+1)

		token := r.csrf()
		if token == "" {
			log.Printf("[g4m] %v, cannot resolve blob video", types.ErrNoCSRFToken)
			out.Notices = append(out.Notices, "X login token (ct0 cookie) not found. API lookup is not possible.")
			return true
		}

		directURL, err := r.lookup.ResolveVideoURL(ctx, ref.ID, token)
		if err != nil {
			log.Printf("[g4m] API lookup for post %s failed: %v", ref.ID, err)
			out.Notices = append(out.Notices, "Error during API lookup for video: "+err.Error())
			return true
		}
		if directURL == "" {
			log.Printf("[g4m] API returned no video URL for post %s", ref.ID)
			return true
		}

		log.Printf("[g4m] API provided direct video URL for post %s", ref.ID)
		out.Downloads = append(out.Downloads, types.ResolvedDownload{
			URL:      directURL,
			Filename: Filename(ref, "mp4", i, len(snap.Videos)),
			Kind:     types.MediaBlobVideo,
		})
		return true
	}

	return false
}

// resolveImages walks the post's content images in DOM order, requesting the
// original-size variant of each.
func (r *Resolver) resolveImages(snap types.PostSnapshot, ref types.PostRef, out *Outcome) {
	for i, img := range snap.Images {
		if !img.InPhotoContainer {
			continue
		}

		imageURL := upscaleImageURL(img.Src)
		out.Downloads = append(out.Downloads, types.ResolvedDownload{
			URL:      imageURL,
			Filename: Filename(ref, imageExtension(imageURL), i, len(snap.Images)),
			Kind:     types.MediaImage,
		})
	}
}

// upscaleImageURL rewrites the name query parameter to request the original
// size. The input is returned unchanged if it does not parse.
func upscaleImageURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		log.Printf("[g4m] failed to enhance image URL %q: %v", raw, err)
		return raw
	}
	q := u.Query()
	q.Set("name", "orig")
	u.RawQuery = q.Encode()
	return u.String()
}

// imageExtension derives the file extension from a format= query token,
// defaulting to jpg.
func imageExtension(imageURL string) string {
	if m := formatTokenRe.FindStringSubmatch(imageURL); len(m) == 2 {
		return m[1]
	}
	return "jpg"
}
