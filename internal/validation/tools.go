package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/youtube"
)

// DataProvider is the slice of the YouTube client the agent tools need.
type DataProvider interface {
	SearchVideos(ctx context.Context, keyword string, maxResults int, filters youtube.SearchFilters) (*youtube.SearchPage, error)
	GetStats(ctx context.Context, ids []string) (map[string]domain.VideoStats, error)
}

// Toolbox executes the tool calls the agents request. Tool results are
// returned as JSON strings the model can consume directly.
type Toolbox struct {
	provider DataProvider
}

// NewToolbox wraps a data provider for agent use.
func NewToolbox(provider DataProvider) *Toolbox {
	return &Toolbox{provider: provider}
}

// Tool names exposed to the agents.
const (
	toolSearchVideos = "search_videos"
	toolGetStats     = "get_video_stats"
)

// Definitions returns the tool declarations passed to the model.
func (t *Toolbox) Definitions() []llm.ToolDef {
	return []llm.ToolDef{
		{
			Name:        toolSearchVideos,
			Description: "Search YouTube for videos matching a keyword. Returns up to maxResults videos with id, title, channel, and publish date.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"keyword": map[string]interface{}{
						"type":        "string",
						"description": "Search query",
					},
					"maxResults": map[string]interface{}{
						"type":        "integer",
						"description": "Number of results, 1-50",
					},
					"order": map[string]interface{}{
						"type":        "string",
						"description": "Sort order: relevance, date, or viewCount",
					},
				},
				"required": []string{"keyword"},
			},
		},
		{
			Name:        toolGetStats,
			Description: "Fetch view, like, and comment counts for up to 50 video IDs.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"videoIds": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Video IDs to look up",
					},
				},
				"required": []string{"videoIds"},
			},
		},
	}
}

// Execute runs one requested tool call and returns its JSON result.
func (t *Toolbox) Execute(ctx context.Context, call llm.ToolCall) (string, error) {
	switch call.Name {
	case toolSearchVideos:
		return t.searchVideos(ctx, call.Arguments)
	case toolGetStats:
		return t.getStats(ctx, call.Arguments)
	default:
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}
}

func (t *Toolbox) searchVideos(ctx context.Context, rawArgs string) (string, error) {
	var args struct {
		Keyword    string `json:"keyword"`
		MaxResults int    `json:"maxResults"`
		Order      string `json:"order"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("%s: bad arguments: %w", toolSearchVideos, err)
	}
	if strings.TrimSpace(args.Keyword) == "" {
		return "", fmt.Errorf("%s: keyword is required", toolSearchVideos)
	}
	if args.MaxResults <= 0 {
		args.MaxResults = 10
	}

	page, err := t.provider.SearchVideos(ctx, args.Keyword, args.MaxResults, youtube.SearchFilters{Order: args.Order})
	if err != nil {
		return "", err
	}
	return marshalToolResult(page)
}

func (t *Toolbox) getStats(ctx context.Context, rawArgs string) (string, error) {
	var args struct {
		VideoIDs []string `json:"videoIds"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("%s: bad arguments: %w", toolGetStats, err)
	}
	if len(args.VideoIDs) == 0 {
		return "", fmt.Errorf("%s: videoIds is required", toolGetStats)
	}
	if len(args.VideoIDs) > 50 {
		args.VideoIDs = args.VideoIDs[:50]
	}

	stats, err := t.provider.GetStats(ctx, args.VideoIDs)
	if err != nil {
		return "", err
	}
	return marshalToolResult(stats)
}

func marshalToolResult(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}
	return string(data), nil
}
