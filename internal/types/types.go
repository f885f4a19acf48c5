package types

// Sentinel values for fields the extractor could not resolve.
// Callers check these instead of handling errors - extraction never fails,
// it only degrades.
const (
	UnknownUser = "unknown_user"
	UnknownID   = "unknown_id"
	NoDate      = "nodate"
)

// PostRef identifies a single timeline post. It is derived from the DOM
// each time a download is triggered and never persisted.
type PostRef struct {
	Author string
	ID     string
	Date   string // YYYYMMDD, or NoDate
}

// HasID reports whether the post identifier was resolved.
func (r PostRef) HasID() bool {
	return r.ID != "" && r.ID != UnknownID
}

// MediaKind tags a media candidate by how it was found in the post.
type MediaKind string

const (
	MediaVideo     MediaKind = "video"      // direct network video URL
	MediaBlobVideo MediaKind = "blob_video" // opaque blob: source, needs API lookup
	MediaImage     MediaKind = "image"      // content image URL
)

// ResolvedDownload is a fully resolved (url, filename) pair ready to fetch.
type ResolvedDownload struct {
	URL      string
	Filename string
	Kind     MediaKind
}

// VideoElement is one <video> element as seen by the content script:
// its own src plus a nested <source> src fallback, in DOM order.
type VideoElement struct {
	Src       string `json:"src"`
	SourceSrc string `json:"sourceSrc"`
}

// ImageElement is one media <img> element as seen by the content script.
// InPhotoContainer is true when the image sits inside a photo permalink or a
// recognized photo container, which is what separates post content from
// avatars and icons.
type ImageElement struct {
	Src              string `json:"src"`
	InPhotoContainer bool   `json:"inPhotoContainer"`
}

// PostSnapshot carries the raw DOM facts for one post, collected by the
// injected content script at click time and shipped to Go as JSON.
// All parsing decisions happen on the Go side.
type PostSnapshot struct {
	// Href of the anchor wrapping the post's <time> element, if any.
	PermalinkHref string `json:"permalinkHref"`
	// Href of any other /status/ anchor inside the post.
	StatusHref string `json:"statusHref"`
	// Machine-readable datetime attribute of the post's <time> element.
	Datetime string `json:"datetime"`
	// aria-labelledby value of the enclosing article.
	AriaLabel string `json:"ariaLabel"`
	// Text of the @handle span under the User-Name region, including the @.
	HandleText string `json:"handleText"`

	Videos []VideoElement `json:"videos"`
	Images []ImageElement `json:"images"`
}
