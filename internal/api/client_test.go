package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ibeckermayer/grab4me/internal/config"
)

const testPostID = "1234567890123"

func testClient(serverURL string) *Client {
	cfg := config.Default()
	c := NewClient(cfg.API, "test-agent", "en-US")
	c.endpoint = serverURL + "/i/api/graphql/%s/TweetDetail"
	return c
}

// detailPayload builds a minimal TweetDetail response with one entry.
func detailPayload(entryID, restID string, variants string) string {
	return fmt.Sprintf(`{
		"data": {
			"threaded_conversation_with_injections_v2": {
				"instructions": [
					{"type": "TimelineClearCache"},
					{
						"type": "TimelineAddEntries",
						"entries": [
							{
								"entryId": %q,
								"content": {
									"itemContent": {
										"tweet_results": {
											"result": {
												"rest_id": %q,
												"legacy": {
													"id_str": %q,
													"extended_entities": {
														"media": [
															{
																"type": "video",
																"video_info": {"variants": [%s]}
															}
														]
													}
												}
											}
										}
									}
								}
							}
						]
					}
				]
			}
		}
	}`, entryID, restID, restID, variants)
}

func TestResolveVideoURL_PicksHighestBitrate(t *testing.T) {
	variants := `
		{"bitrate": 480000, "content_type": "video/mp4", "url": "https://video.twimg.com/480.mp4"},
		{"content_type": "application/x-mpegURL", "url": "https://video.twimg.com/playlist.m3u8"},
		{"bitrate": 832000, "content_type": "video/mp4", "url": "https://video.twimg.com/832.mp4"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPayload("tweet-"+testPostID, testPostID, variants))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).ResolveVideoURL(context.Background(), testPostID, "csrf-token")
	if err != nil {
		t.Fatalf("ResolveVideoURL: %v", err)
	}
	if got != "https://video.twimg.com/832.mp4" {
		t.Errorf("got %q, want the highest-bitrate mp4", got)
	}
}

func TestResolveVideoURL_RequestShape(t *testing.T) {
	var captured *http.Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		fmt.Fprint(w, detailPayload("tweet-"+testPostID, testPostID, ""))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).ResolveVideoURL(context.Background(), testPostID, "csrf-token"); err != nil {
		t.Fatalf("ResolveVideoURL: %v", err)
	}

	cfg := config.Default()
	if want := "/i/api/graphql/" + cfg.API.OperationID + "/TweetDetail"; captured.URL.Path != want {
		t.Errorf("path = %q, want %q", captured.URL.Path, want)
	}

	q := captured.URL.Query()
	if !strings.Contains(q.Get("variables"), `"focalTweetId":"`+testPostID+`"`) {
		t.Errorf("variables missing focalTweetId: %q", q.Get("variables"))
	}
	if q.Get("features") == "" {
		t.Error("features query parameter missing")
	}
	if q.Get("fieldToggles") == "" {
		t.Error("fieldToggles query parameter missing")
	}

	headers := map[string]string{
		"Authorization":             "Bearer " + cfg.API.BearerToken,
		"User-Agent":                "test-agent",
		"Accept-Language":           "en-US",
		"x-csrf-token":              "csrf-token",
		"x-twitter-auth-type":       "OAuth2Session",
		"x-twitter-client-language": "en",
		"x-twitter-active-user":     "yes",
	}
	for name, want := range headers {
		if got := captured.Header.Get(name); got != want {
			t.Errorf("header %s = %q, want %q", name, got, want)
		}
	}
}

func TestResolveVideoURL_EntryIDMatch(t *testing.T) {
	variants := `{"bitrate": 100, "content_type": "video/mp4", "url": "https://video.twimg.com/v.mp4"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPayload("conversationthread-tweet-"+testPostID, testPostID, variants))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).ResolveVideoURL(context.Background(), testPostID, "csrf-token")
	if err != nil {
		t.Fatalf("ResolveVideoURL: %v", err)
	}
	if got != "https://video.twimg.com/v.mp4" {
		t.Errorf("got %q", got)
	}
}

func TestResolveVideoURL_RejectsMismatchedFallback(t *testing.T) {
	// No entry id mentions the target post and the first entry belongs to a
	// different tweet: the lookup must not resolve that tweet's video.
	variants := `{"bitrate": 100, "content_type": "video/mp4", "url": "https://video.twimg.com/decoy.mp4"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPayload("tweet-9999999999999", "9999999999999", variants))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).ResolveVideoURL(context.Background(), testPostID, "csrf-token")
	if err != nil {
		t.Fatalf("ResolveVideoURL: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want no match", got)
	}
}

func TestResolveVideoURL_MatchingFallbackRestID(t *testing.T) {
	// The entry id carries no tweet-{id} marker, but the first entry's
	// rest_id confirms it is the target post.
	variants := `{"bitrate": 100, "content_type": "video/mp4", "url": "https://video.twimg.com/v.mp4"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPayload("homeConversation-abc", testPostID, variants))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).ResolveVideoURL(context.Background(), testPostID, "csrf-token")
	if err != nil {
		t.Fatalf("ResolveVideoURL: %v", err)
	}
	if got != "https://video.twimg.com/v.mp4" {
		t.Errorf("got %q", got)
	}
}

func TestResolveVideoURL_NoVideoMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPayload("tweet-"+testPostID, testPostID, ""))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).ResolveVideoURL(context.Background(), testPostID, "csrf-token")
	if err != nil {
		t.Fatalf("ResolveVideoURL: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestResolveVideoURL_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ResolveVideoURL(context.Background(), testPostID, "csrf-token")
	if err == nil {
		t.Fatal("expected an error for a non-2xx status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestResolveVideoURL_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ResolveVideoURL(context.Background(), testPostID, "csrf-token")
	if err == nil {
		t.Fatal("expected an error for a malformed payload")
	}
}

func TestResolveVideoURL_RequiresArguments(t *testing.T) {
	c := testClient("http://127.0.0.1:0")

	if _, err := c.ResolveVideoURL(context.Background(), "", "csrf"); err == nil {
		t.Error("expected an error for an empty post id")
	}
	if _, err := c.ResolveVideoURL(context.Background(), testPostID, ""); err == nil {
		t.Error("expected an error for an empty csrf token")
	}
}

func TestClientLanguage(t *testing.T) {
	cases := map[string]string{
		"en-US": "en",
		"de":    "de",
		"":      "en",
	}
	for locale, want := range cases {
		if got := clientLanguage(locale); got != want {
			t.Errorf("clientLanguage(%q) = %q, want %q", locale, got, want)
		}
	}
}
