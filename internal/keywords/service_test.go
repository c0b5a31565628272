package keywords

import (
	"context"
	"testing"
	"time"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/youtube"
)

type fakeProvider struct {
	page  *youtube.SearchPage
	stats map[string]domain.VideoStats
}

func (f *fakeProvider) SearchVideos(ctx context.Context, keyword string, maxResults int, filters youtube.SearchFilters) (*youtube.SearchPage, error) {
	return f.page, nil
}

func (f *fakeProvider) GetStats(ctx context.Context, ids []string) (map[string]domain.VideoStats, error) {
	return f.stats, nil
}

func TestScoreEmptyResults(t *testing.T) {
	svc := NewService(&fakeProvider{page: &youtube.SearchPage{}})
	opp, err := svc.Score(context.Background(), "obscure topic")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if opp.Score != 0 || opp.Keyword != "obscure topic" {
		t.Errorf("got %+v, want zero score", opp)
	}
}

func TestScoreBlendsSignals(t *testing.T) {
	recent := time.Now().AddDate(0, -1, 0).Format(time.RFC3339)
	old := time.Now().AddDate(-2, 0, 0).Format(time.RFC3339)

	provider := &fakeProvider{
		page: &youtube.SearchPage{
			Items: []domain.Video{
				{ID: "v1", ChannelID: "ch1", PublishedAt: recent},
				{ID: "v2", ChannelID: "ch1", PublishedAt: old},
				{ID: "v3", ChannelID: "ch2", PublishedAt: old},
			},
			TotalResults: 120,
		},
		stats: map[string]domain.VideoStats{
			"v1": {VideoID: "v1", ViewCount: 100000, LikeCount: 4000, CommentCount: 1000},
			"v2": {VideoID: "v2", ViewCount: 50000, LikeCount: 1500, CommentCount: 500},
			"v3": {VideoID: "v3", ViewCount: 150000, LikeCount: 6000, CommentCount: 2000},
		},
	}

	svc := NewService(provider)
	opp, err := svc.Score(context.Background(), "go tutorials")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if opp.Score <= 0 || opp.Score > 100 {
		t.Errorf("Score = %d, want within (0,100]", opp.Score)
	}
	if opp.AvgViews != 100000 {
		t.Errorf("AvgViews = %d, want 100000", opp.AvgViews)
	}
	if opp.CompetingVideos != 120 {
		t.Errorf("CompetingVideos = %d, want 120", opp.CompetingVideos)
	}
	if opp.RecentUploads != 1 {
		t.Errorf("RecentUploads = %d, want 1", opp.RecentUploads)
	}
	if opp.TopChannelShare < 0.66 || opp.TopChannelShare > 0.67 {
		t.Errorf("TopChannelShare = %f, want ~2/3", opp.TopChannelShare)
	}
	if len(opp.SampledVideoIDs) != 3 {
		t.Errorf("SampledVideoIDs = %v", opp.SampledVideoIDs)
	}
}
