// Package api looks up direct video URLs through X.com's private TweetDetail
// GraphQL query, riding the logged-in session's credentials.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ibeckermayer/grab4me/internal/config"
)

const tweetDetailEndpoint = "https://x.com/i/api/graphql/%s/TweetDetail"

// Client performs authenticated TweetDetail lookups.
type Client struct {
	httpClient  *http.Client
	endpoint    string // format string taking the operation id
	operationID string
	bearerToken string
	userAgent   string
	language    string
}

// NewClient creates an API client. The user agent and language are mirrored
// from the browser session so requests look like they came from the page.
func NewClient(cfg config.APIConfig, userAgent, language string) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		endpoint:    tweetDetailEndpoint,
		operationID: cfg.OperationID,
		bearerToken: cfg.BearerToken,
		userAgent:   userAgent,
		language:    language,
	}
}

// ResolveVideoURL fetches the TweetDetail payload for a post and returns the
// highest-bitrate mp4 variant URL. It returns "" with a nil error when the
// payload parses but holds no matching video, and an error on network
// failure, a non-2xx status, or a malformed payload.
func (c *Client) ResolveVideoURL(ctx context.Context, postID, csrfToken string) (string, error) {
	if postID == "" {
		return "", fmt.Errorf("post id is required")
	}
	if csrfToken == "" {
		return "", fmt.Errorf("csrf token is required")
	}

	req, err := c.buildRequest(ctx, postID, csrfToken)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("API request failed: %s", resp.Status)
	}

	var detail tweetDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return "", fmt.Errorf("parse API response: %w", err)
	}

	return extractVideoURL(&detail, postID), nil
}

// buildRequest assembles the TweetDetail GET. The variables, features and
// fieldToggles sets are versioned external data the backend expects verbatim;
// changing them is a data update, not a code change (the operation id and
// bearer token already come from config).
func (c *Client) buildRequest(ctx context.Context, postID, csrfToken string) (*http.Request, error) {
	variables := map[string]any{
		"focalTweetId":                           postID,
		"with_rux_injections":                    false,
		"includePromotedContent":                 true,
		"withCommunity":                          true,
		"withQuickPromoteEligibilityTweetFields": true,
		"withBirdwatchNotes":                     true,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}

	features := map[string]any{
		"rweb_lists_timeline_redesign_enabled":                                    true,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"verified_phone_label_enabled":                                            false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"tweetypie_unmention_optimization_enabled":                                true,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"view_counts_everywhere_api_enabled":                                      true,
		"longform_notetweets_consumption_enabled":                                 true,
		"responsive_web_twitter_article_tweet_consumption_enabled":                false,
		"tweet_awards_web_tipping_enabled":                                        false,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"longform_notetweets_inline_media_enabled":                                true,
		"responsive_web_media_download_video_enabled":                             false,
		"responsive_web_enhance_cards_enabled":                                    false,
	}

	fieldToggles := map[string]any{
		"withAuxiliaryUserLabels":     false,
		"withArticleRichContentState": false,
	}

	marshal := func(v any) string {
		b, _ := json.Marshal(v)
		return string(b)
	}

	query := url.Values{}
	query.Set("variables", marshal(variables))
	query.Set("features", marshal(features))
	query.Set("fieldToggles", marshal(fieldToggles))

	endpoint := fmt.Sprintf(c.endpoint, c.operationID) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", c.language)
	req.Header.Set("x-csrf-token", csrfToken)
	req.Header.Set("x-twitter-auth-type", "OAuth2Session")
	req.Header.Set("x-twitter-client-language", clientLanguage(c.language))
	req.Header.Set("x-twitter-active-user", "yes")

	return req, nil
}

// clientLanguage reduces a locale like en-US to its language part.
func clientLanguage(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	if lang == "" {
		return "en"
	}
	return lang
}

// extractVideoURL walks the timeline payload for the target post's media and
// picks the best mp4 variant.
func extractVideoURL(detail *tweetDetailResponse, postID string) string {
	entries := addedEntries(detail)
	if entries == nil {
		log.Printf("[g4m] no timeline entries in API response for post %s", postID)
		return ""
	}

	result := matchTweetResult(entries, postID)
	if result == nil {
		log.Printf("[g4m] no tweet result for post %s in API response", postID)
		return ""
	}

	// Visibility-limited results wrap the actual tweet.
	if result.Tweet != nil {
		result = result.Tweet
	}
	if result.Legacy == nil {
		return ""
	}

	for _, m := range result.Legacy.ExtendedEntities.Media {
		if m.Type != "video" && m.Type != "animated_gif" {
			continue
		}
		if u := bestVariantURL(m.VideoInfo.Variants); u != "" {
			return u
		}
	}

	log.Printf("[g4m] no suitable video variant for post %s", postID)
	return ""
}

// addedEntries finds the TimelineAddEntries instruction block.
func addedEntries(detail *tweetDetailResponse) []entry {
	for _, instr := range detail.Data.ThreadedConversation.Instructions {
		if instr.Type == "TimelineAddEntries" {
			return instr.Entries
		}
	}
	return nil
}

// matchTweetResult locates the entry for the target post. When no entry id
// embeds the target, the first entry is used only if its own id matches -
// this guards against resolving a decoy or unrelated post.
func matchTweetResult(entries []entry, postID string) *tweetResult {
	for _, e := range entries {
		if strings.Contains(e.EntryID, "tweet-"+postID) {
			return e.Content.ItemContent.TweetResults.Result
		}
	}

	if len(entries) == 0 {
		return nil
	}

	fallback := entries[0].Content.ItemContent.TweetResults.Result
	if fallback == nil {
		return nil
	}
	if fallback.RestID == postID {
		return fallback
	}
	if fallback.Legacy != nil && fallback.Legacy.IDStr == postID {
		return fallback
	}

	log.Printf("[g4m] fallback entry does not match target post %s", postID)
	return nil
}

// bestVariantURL returns the highest-bitrate mp4 variant with a usable URL.
func bestVariantURL(variants []variant) string {
	mp4s := make([]variant, 0, len(variants))
	for _, v := range variants {
		if v.ContentType == "video/mp4" && v.URL != "" {
			mp4s = append(mp4s, v)
		}
	}
	if len(mp4s) == 0 {
		return ""
	}

	sort.Slice(mp4s, func(i, j int) bool {
		return mp4s[i].Bitrate > mp4s[j].Bitrate
	})

	return mp4s[0].URL
}
