package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/logger"
)

// Config holds configuration for the YouTube Data API client.
type Config struct {
	APIKey          string
	BaseURL         string
	MaxCommentPages int
	Timeout         time.Duration
}

// Client wraps the YouTube Data API v3. Comment fetching paginates
// internally and retries rate-limit/server errors with bounded backoff.
type Client struct {
	client          *resty.Client
	apiKey          string
	baseURL         string
	maxCommentPages int
}

// NewClient creates a new YouTube Data API client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New()
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}

	maxPages := cfg.MaxCommentPages
	if maxPages <= 0 {
		maxPages = 20
	}

	return &Client{
		client:          client,
		apiKey:          cfg.APIKey,
		baseURL:         baseURL,
		maxCommentPages: maxPages,
	}
}

// SearchFilters narrows a video search.
type SearchFilters struct {
	PublishedAfter string // RFC3339, optional
	Order          string // relevance (default), date, viewCount
	RegionCode     string
}

// SearchPage is one page of search results.
type SearchPage struct {
	Items         []domain.Video
	TotalResults  int
	NextPageToken string
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type searchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelID    string `json:"channelId"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Description  string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

// SearchVideos searches for videos matching a keyword.
func (c *Client) SearchVideos(ctx context.Context, keyword string, maxResults int, filters SearchFilters) (*SearchPage, error) {
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}
	order := filters.Order
	if order == "" {
		order = "relevance"
	}

	params := map[string]string{
		"part":       "snippet",
		"type":       "video",
		"q":          keyword,
		"order":      order,
		"maxResults": fmt.Sprintf("%d", maxResults),
		"key":        c.apiKey,
	}
	if filters.PublishedAfter != "" {
		params["publishedAfter"] = filters.PublishedAfter
	}
	if filters.RegionCode != "" {
		params["regionCode"] = filters.RegionCode
	}

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}

	page := &SearchPage{
		TotalResults:  resp.PageInfo.TotalResults,
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		page.Items = append(page.Items, domain.Video{
			ID:           item.ID.VideoID,
			Title:        item.Snippet.Title,
			ChannelID:    item.Snippet.ChannelID,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
			Description:  item.Snippet.Description,
		})
	}
	return page, nil
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// GetStats returns statistics for the given video IDs.
func (c *Client) GetStats(ctx context.Context, ids []string) (map[string]domain.VideoStats, error) {
	if len(ids) == 0 {
		return map[string]domain.VideoStats{}, nil
	}

	params := map[string]string{
		"part": "statistics",
		"id":   strings.Join(ids, ","),
		"key":  c.apiKey,
	}

	var resp videosResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}

	stats := make(map[string]domain.VideoStats, len(resp.Items))
	for _, item := range resp.Items {
		stats[item.ID] = domain.VideoStats{
			VideoID:      item.ID,
			ViewCount:    parseCount(item.Statistics.ViewCount),
			LikeCount:    parseCount(item.Statistics.LikeCount),
			CommentCount: parseCount(item.Statistics.CommentCount),
		}
	}
	return stats, nil
}

type commentThreadsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			TotalReplyCount int `json:"totalReplyCount"`
			TopLevelComment struct {
				ID      string `json:"id"`
				Snippet struct {
					TextDisplay string `json:"textDisplay"`
					LikeCount   int    `json:"likeCount"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// FetchAllComments fetches every available top-level comment for a video,
// ordered by relevance, paginating internally up to the configured page
// budget.
func (c *Client) FetchAllComments(ctx context.Context, videoID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	pageToken := ""

	for page := 0; page < c.maxCommentPages; page++ {
		params := map[string]string{
			"part":       "snippet",
			"videoId":    videoID,
			"order":      "relevance",
			"maxResults": "100",
			"textFormat": "plainText",
			"key":        c.apiKey,
		}
		if pageToken != "" {
			params["pageToken"] = pageToken
		}

		var resp commentThreadsResponse
		if err := c.get(ctx, "/commentThreads", params, &resp); err != nil {
			return nil, fmt.Errorf("fetch comments for %s: %w", videoID, err)
		}

		for _, item := range resp.Items {
			top := item.Snippet.TopLevelComment
			comments = append(comments, domain.Comment{
				ID:             top.ID,
				Text:           top.Snippet.TextDisplay,
				LikeCount:      top.Snippet.LikeCount,
				ReplyCount:     item.Snippet.TotalReplyCount,
				RelevanceScore: top.Snippet.LikeCount + item.Snippet.TotalReplyCount,
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	logger.CtxDebug(ctx, "Fetched %d comments for video %s", len(comments), videoID)
	return comments, nil
}

// get issues one API request with bounded exponential backoff on
// rate-limit and server errors (3 retries).
func (c *Client) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	const maxRetries = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		var apiErr apiError
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(result).
			SetError(&apiErr).
			Get(c.baseURL + path)

		if err != nil {
			lastErr = err
			continue
		}

		code := resp.StatusCode()
		if code >= 200 && code < 300 {
			return nil
		}

		msg := apiErr.Error.Message
		if msg == "" {
			msg = string(resp.Body())
		}
		lastErr = fmt.Errorf("YouTube API returned HTTP %d: %s", code, msg)

		// Only retry throttling and server-side failures
		if code != 429 && code < 500 {
			return lastErr
		}
	}
	return fmt.Errorf("giving up after %d retries: %w", maxRetries, lastErr)
}

func parseCount(s string) int64 {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int64(r-'0')
	}
	return n
}
