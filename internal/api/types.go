package api

// Response shapes for the TweetDetail GraphQL query. Only the fields the
// lookup traverses are modeled; everything else in the payload is ignored.

type tweetDetailResponse struct {
	Data struct {
		ThreadedConversation struct {
			Instructions []instruction `json:"instructions"`
		} `json:"threaded_conversation_with_injections_v2"`
	} `json:"data"`
}

type instruction struct {
	Type    string  `json:"type"`
	Entries []entry `json:"entries"`
}

type entry struct {
	EntryID string `json:"entryId"`
	Content struct {
		ItemContent struct {
			TweetResults struct {
				Result *tweetResult `json:"result"`
			} `json:"tweet_results"`
		} `json:"itemContent"`
	} `json:"content"`
}

// tweetResult is self-nesting: results with visibility restrictions wrap the
// actual tweet in a "tweet" field.
type tweetResult struct {
	RestID string       `json:"rest_id"`
	Tweet  *tweetResult `json:"tweet"`
	Legacy *tweetLegacy `json:"legacy"`
}

type tweetLegacy struct {
	IDStr            string `json:"id_str"`
	ExtendedEntities struct {
		Media []media `json:"media"`
	} `json:"extended_entities"`
}

type media struct {
	Type      string    `json:"type"`
	VideoInfo videoInfo `json:"video_info"`
}

type videoInfo struct {
	Variants []variant `json:"variants"`
}

type variant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}
