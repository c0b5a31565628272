package domain

// Agent names for the idea-validation pipeline. The barrier checks the
// completion set against exactly this list.
const (
	AgentCompetition = "competition"
	AgentAudience    = "audience"
	AgentTrend       = "trend"
	AgentStrategy    = "strategy"
)

// RequiredAgents lists every agent the supervisor depends on.
var RequiredAgents = []string{AgentCompetition, AgentAudience, AgentTrend, AgentStrategy}

// ValidationInput is the immutable input to a validation run.
type ValidationInput struct {
	Idea           string `json:"idea"`
	TargetAudience string `json:"target_audience"`
	Goal           string `json:"goal"`
	JobID          string `json:"job_id"`
}

// CompetitionAnalysis is the competition agent's output slot.
type CompetitionAnalysis struct {
	SaturationLevel string   `json:"saturation_level"` // low | medium | high
	TopCompetitors  []string `json:"top_competitors"`
	ContentGaps     []string `json:"content_gaps"`
	Differentiators []string `json:"differentiators"`
	Summary         string   `json:"summary"`
}

// AudienceAnalysis is the audience agent's output slot.
type AudienceAnalysis struct {
	AudienceFit   string   `json:"audience_fit"` // poor | fair | strong
	PainPoints    []string `json:"pain_points"`
	SearchHabits  []string `json:"search_habits"`
	EngagementCue string   `json:"engagement_cue"`
	Summary       string   `json:"summary"`
}

// TrendAnalysis is the trend agent's output slot.
type TrendAnalysis struct {
	Momentum      string   `json:"momentum"` // declining | stable | rising
	RecentSignals []string `json:"recent_signals"`
	Seasonality   string   `json:"seasonality"`
	Summary       string   `json:"summary"`
}

// StrategyAnalysis is the strategy agent's output slot.
type StrategyAnalysis struct {
	RecommendedFormat string   `json:"recommended_format"`
	HookIdeas         []string `json:"hook_ideas"`
	PublishingNotes   []string `json:"publishing_notes"`
	Summary           string   `json:"summary"`
}

// ReferenceVideo is an existing video cited by the supervisor verdict.
type ReferenceVideo struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Reason  string `json:"reason"`
}

// ValidationVerdict is the supervisor's unified synthesis over all four
// agent outputs.
type ValidationVerdict struct {
	Verdict          string           `json:"verdict"` // go | refine | avoid
	Score            int              `json:"score"`   // 0-100
	Improvements     []string         `json:"improvements"`
	TitleSuggestions []string         `json:"title_suggestions"`
	ContentAngles    []string         `json:"content_angles"`
	ReferenceVideos  []ReferenceVideo `json:"reference_videos"` // 1-5 entries
	Reasoning        string           `json:"reasoning"`
}

// ValidationResult is the terminal message of a validation stream.
type ValidationResult struct {
	Success bool               `json:"success"`
	Verdict *ValidationVerdict `json:"verdict,omitempty"`
	Error   string             `json:"error,omitempty"`
}
