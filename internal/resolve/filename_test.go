package resolve

import (
	"regexp"
	"testing"

	"github.com/ibeckermayer/grab4me/internal/types"
)

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"plain_user",
		"user name!",
		"ユーザー",
		"a/b\\c:d*e?f\"g<h>i|j",
		"dots.and-dashes_ok",
		"",
	}

	safe := regexp.MustCompile(`^[A-Za-z0-9_.-]*$`)

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)

		if once != twice {
			t.Errorf("Sanitize(%q) not idempotent: %q != %q", in, once, twice)
		}
		if !safe.MatchString(once) {
			t.Errorf("Sanitize(%q) = %q contains unsafe characters", in, once)
		}
	}
}

func TestSanitize_ReplacesUnsafe(t *testing.T) {
	got := Sanitize("some user!")
	if got != "some_user_" {
		t.Errorf("Sanitize = %q, want %q", got, "some_user_")
	}
}

func TestFilename_Deterministic(t *testing.T) {
	ref := types.PostRef{Author: "someuser", ID: "1234567890123", Date: "20240115"}

	a := Filename(ref, "mp4", 0, 1)
	b := Filename(ref, "mp4", 0, 1)
	if a != b {
		t.Errorf("Filename not deterministic: %q != %q", a, b)
	}
	if a != "someuser_20240115_1234567890123.mp4" {
		t.Errorf("Filename = %q", a)
	}
}

func TestFilename_SingleItemOmitsIndex(t *testing.T) {
	ref := types.PostRef{Author: "u", ID: "111", Date: "20240101"}

	got := Filename(ref, "jpg", 0, 1)
	want := "u_20240101_111.jpg"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestFilename_MultiItemAppendsIndex(t *testing.T) {
	ref := types.PostRef{Author: "u", ID: "111", Date: "20240101"}

	got := Filename(ref, "jpg", 1, 3)
	want := "u_20240101_111_2.jpg"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestFilename_NoDateOmitsSegment(t *testing.T) {
	ref := types.PostRef{Author: "u", ID: "111", Date: types.NoDate}

	got := Filename(ref, "mp4", 0, 1)
	want := "u_111.mp4"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestFilename_SanitizesAuthorAndID(t *testing.T) {
	ref := types.PostRef{Author: "bad user!", ID: "12-34.56", Date: types.NoDate}

	got := Filename(ref, "mp4", 0, 1)
	// Author keeps dots and dashes, the id does not.
	want := "bad_user__12_34_56.mp4"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}
