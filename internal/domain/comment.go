package domain

// Sentiment is the classification label assigned to a comment.
// Values include SentimentPositive, SentimentNegative, and SentimentNeutral.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three known labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Comment is a single YouTube comment as fetched from the data provider.
// RelevanceScore is derived (likes + replies) and used only for ranking
// and truncation before classification. Immutable once fetched.
type Comment struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	LikeCount      int    `json:"like_count"`
	ReplyCount     int    `json:"reply_count"`
	RelevanceScore int    `json:"relevance_score"`
}

// ClassifiedComment pairs a comment's text with its sentiment label.
type ClassifiedComment struct {
	Comment   string    `json:"comment"`
	Sentiment Sentiment `json:"sentiment"`
}

// Transcript is the result of a transcript fetch. Available is false when
// the video has no usable caption track; Text is empty in that case.
type Transcript struct {
	Text      string `json:"text"`
	Available bool   `json:"available"`
}

// Video is a search result item from the data provider.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`
	PublishedAt  string `json:"published_at"`
	Description  string `json:"description"`
}

// VideoStats holds per-video statistics.
type VideoStats struct {
	VideoID      string `json:"video_id"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
}
