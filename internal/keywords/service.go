package keywords

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/youtube"
)

// DataProvider is the slice of the YouTube client keyword scoring needs.
type DataProvider interface {
	SearchVideos(ctx context.Context, keyword string, maxResults int, filters youtube.SearchFilters) (*youtube.SearchPage, error)
	GetStats(ctx context.Context, ids []string) (map[string]domain.VideoStats, error)
}

// Service computes keyword opportunity scores: high demand signals and
// low competition raise the score.
type Service struct {
	provider DataProvider
}

// NewService creates a keyword scoring service.
func NewService(provider DataProvider) *Service {
	return &Service{provider: provider}
}

const sampleSize = 25

// Score rates a keyword 0-100 from a sample of its top search results.
func (s *Service) Score(ctx context.Context, keyword string) (*domain.KeywordOpportunity, error) {
	page, err := s.provider.SearchVideos(ctx, keyword, sampleSize, youtube.SearchFilters{Order: "relevance"})
	if err != nil {
		return nil, fmt.Errorf("score keyword %q: %w", keyword, err)
	}
	if len(page.Items) == 0 {
		return &domain.KeywordOpportunity{Keyword: keyword}, nil
	}

	ids := make([]string, 0, len(page.Items))
	channelCounts := make(map[string]int)
	recentUploads := 0
	cutoff := time.Now().AddDate(0, -6, 0)

	for _, v := range page.Items {
		ids = append(ids, v.ID)
		channelCounts[v.ChannelID]++
		if published, err := time.Parse(time.RFC3339, v.PublishedAt); err == nil && published.After(cutoff) {
			recentUploads++
		}
	}

	stats, err := s.provider.GetStats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("score keyword %q: %w", keyword, err)
	}

	var totalViews, totalEngagement int64
	for _, st := range stats {
		totalViews += st.ViewCount
		totalEngagement += st.LikeCount + st.CommentCount
	}

	sampled := len(page.Items)
	avgViews := totalViews / int64(sampled)
	avgEngagement := 0.0
	if totalViews > 0 {
		avgEngagement = float64(totalEngagement) / float64(totalViews)
	}

	topChannel := 0
	for _, count := range channelCounts {
		if count > topChannel {
			topChannel = count
		}
	}
	topChannelShare := float64(topChannel) / float64(sampled)

	opportunity := &domain.KeywordOpportunity{
		Keyword:         keyword,
		AvgViews:        avgViews,
		AvgEngagement:   avgEngagement,
		CompetingVideos: page.TotalResults,
		RecentUploads:   recentUploads,
		TopChannelShare: topChannelShare,
		SampledVideoIDs: ids,
	}
	opportunity.Score = score(opportunity)

	logger.CtxDebug(ctx, "Keyword %q scored %d (avg views %d, competitors %d)",
		keyword, opportunity.Score, avgViews, page.TotalResults)
	return opportunity, nil
}

// score blends demand and competition signals into 0-100. Demand: average
// views (log-scaled) and engagement rate. Competition: total competing
// videos (log-scaled), recent upload density, and single-channel
// dominance, each subtracting from the score.
func score(o *domain.KeywordOpportunity) int {
	demand := 0.0
	if o.AvgViews > 0 {
		// 1e6 avg views saturates the demand axis
		demand = math.Min(math.Log10(float64(o.AvgViews))/6, 1)
	}
	engagement := math.Min(o.AvgEngagement*20, 1)

	competition := 0.0
	if o.CompetingVideos > 0 {
		competition = math.Min(math.Log10(float64(o.CompetingVideos))/6, 1)
	}
	recency := math.Min(float64(o.RecentUploads)/float64(sampleSize), 1)

	raw := 0.4*demand + 0.2*engagement + 0.25*(1-competition) + 0.1*(1-recency) + 0.05*(1-o.TopChannelShare)
	return int(math.Round(raw * 100))
}
