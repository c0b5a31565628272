package domain

// SentimentCount is one bucket of the final sentiment rollup.
// Percentage is round(count/total*100); buckets need not sum to exactly 100.
type SentimentCount struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// SentimentSummary is the terminal rollup over all classified comments.
type SentimentSummary struct {
	Positive SentimentCount `json:"positive"`
	Negative SentimentCount `json:"negative"`
	Neutral  SentimentCount `json:"neutral"`
	Total    int            `json:"total"`
}

// Emotion is one detected emotion with its share of comments and the
// phrases that triggered it.
type Emotion struct {
	Name       string   `json:"name"`
	Percentage int      `json:"percentage"`
	Triggers   []string `json:"triggers"`
}

// EmotionInsight is the output of the emotions stage.
type EmotionInsight struct {
	Emotions []Emotion `json:"emotions"`
}

// Theme is a recurring topic within one sentiment bucket.
type Theme struct {
	Theme    string   `json:"theme"`
	Mentions int      `json:"mentions"`
	Keywords []string `json:"keywords"`
}

// PatternInsight groups recurring themes by sentiment bucket.
type PatternInsight struct {
	Positive []Theme `json:"positive"`
	Negative []Theme `json:"negative"`
	Neutral  []Theme `json:"neutral"`
}

// LovedAspect is one thing viewers appreciated.
type LovedAspect struct {
	Aspect   string   `json:"aspect"`
	Reason   string   `json:"reason"`
	Mentions int      `json:"mentions"`
	Examples []string `json:"examples"`
}

// LovedInsight is the output of the things-loved stage.
type LovedInsight struct {
	Aspects []LovedAspect `json:"aspects"`
}

// Severity tiers for improvement issues.
const (
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeverityCritical = "critical"
)

// Improvement is one issue viewers raised, with a suggested fix.
type Improvement struct {
	Issue      string   `json:"issue"`
	Severity   string   `json:"severity"` // minor | moderate | critical
	Suggestion string   `json:"suggestion"`
	Mentions   int      `json:"mentions"`
	Examples   []string `json:"examples"`
}

// ImprovementInsight is the output of the improvements stage.
type ImprovementInsight struct {
	Improvements []Improvement `json:"improvements"`
}

// ContentRequest is an explicit viewer request inside the want-more stage.
type ContentRequest struct {
	Topic    string   `json:"topic"`
	Mentions int      `json:"mentions"`
	Examples []string `json:"examples"`
}

// WantMoreInsight captures what viewers want more of, in three buckets:
// explicit content requests, requests to expand specific sections of the
// video, and questions implying missing topics.
type WantMoreInsight struct {
	ContentRequests  []ContentRequest `json:"content_requests"`
	SectionRequests  []ContentRequest `json:"section_requests"`
	ImpliedQuestions []ContentRequest `json:"implied_questions"`
}

// AnalysisResult is the full payload of a completed video analysis job.
// Each fragment is written by exactly one pipeline stage; fragments from
// failed stages are zero-valued rather than absent.
type AnalysisResult struct {
	VideoID        string              `json:"video_id"`
	HasTranscript  bool                `json:"has_transcript"`
	TotalProcessed int                 `json:"total_processed"`
	Summary        *SentimentSummary   `json:"summary,omitempty"`
	Emotions       *EmotionInsight     `json:"emotions,omitempty"`
	Patterns       *PatternInsight     `json:"patterns,omitempty"`
	ThingsLoved    *LovedInsight       `json:"things_loved,omitempty"`
	Improvements   *ImprovementInsight `json:"improvements,omitempty"`
	WantMore       *WantMoreInsight    `json:"want_more,omitempty"`
}

// KeywordOpportunity scores how attractive a keyword/topic is for new
// content: demand high, competition low.
type KeywordOpportunity struct {
	Keyword         string   `json:"keyword"`
	Score           int      `json:"score"` // 0-100
	AvgViews        int64    `json:"avg_views"`
	AvgEngagement   float64  `json:"avg_engagement"`
	CompetingVideos int      `json:"competing_videos"`
	RecentUploads   int      `json:"recent_uploads"`
	TopChannelShare float64  `json:"top_channel_share"`
	SampledVideoIDs []string `json:"sampled_video_ids"`
}
