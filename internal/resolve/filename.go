package resolve

import (
	"fmt"
	"regexp"

	"github.com/ibeckermayer/grab4me/internal/types"
)

var (
	unsafeChars   = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)
	unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// Sanitize replaces any character outside [A-Za-z0-9_.-] with an underscore.
// It is idempotent: sanitizing already-safe output changes nothing.
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// sanitizeID is stricter than Sanitize: post ids are numeric, so dots and
// dashes are stripped too.
func sanitizeID(s string) string {
	return unsafeIDChars.ReplaceAllString(s, "_")
}

// Filename builds the deterministic name for one resolved media item:
//
//	{author}_{date_}{id}{_index+1 when mediaCount>1}.{ext}
//
// The date segment is omitted entirely when unknown. The index suffix is
// 1-based and only present when the post carries more than one item.
func Filename(ref types.PostRef, ext string, index, mediaCount int) string {
	date := ""
	if ref.Date != types.NoDate && ref.Date != "" {
		date = ref.Date + "_"
	}

	suffix := ""
	if mediaCount > 1 {
		suffix = fmt.Sprintf("_%d", index+1)
	}

	return fmt.Sprintf("%s_%s%s%s.%s", Sanitize(ref.Author), date, sanitizeID(ref.ID), suffix, ext)
}
