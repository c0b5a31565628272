package analysis

import (
	"testing"

	"github.com/rlou/tubescope/internal/domain"
)

func classifiedN(n int, sentiment domain.Sentiment) []domain.ClassifiedComment {
	out := make([]domain.ClassifiedComment, n)
	for i := range out {
		out[i] = domain.ClassifiedComment{Comment: "c", Sentiment: sentiment}
	}
	return out
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(SeparatedComments{})
	if summary.Total != 0 {
		t.Errorf("Total = %d, want 0", summary.Total)
	}
	for name, b := range map[string]domain.SentimentCount{
		"positive": summary.Positive,
		"negative": summary.Negative,
		"neutral":  summary.Neutral,
	} {
		if b.Count != 0 || b.Percentage != 0 {
			t.Errorf("%s bucket = %+v, want zeros", name, b)
		}
	}
}

func TestSummarizeCountsAndRounding(t *testing.T) {
	tests := []struct {
		name    string
		p, n, u int
		wantP   int
		wantN   int
		wantU   int
	}{
		{name: "even split", p: 5, n: 3, u: 2, wantP: 50, wantN: 30, wantU: 20},
		{name: "thirds round independently", p: 1, n: 1, u: 1, wantP: 33, wantN: 33, wantU: 33},
		{name: "rounds up at half", p: 1, n: 3, u: 0, wantP: 25, wantN: 75, wantU: 0},
		{name: "all one bucket", p: 0, n: 0, u: 7, wantP: 0, wantN: 0, wantU: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sep := SeparatedComments{
				Positive: classifiedN(tt.p, domain.SentimentPositive),
				Negative: classifiedN(tt.n, domain.SentimentNegative),
				Neutral:  classifiedN(tt.u, domain.SentimentNeutral),
			}
			summary := Summarize(sep)

			total := tt.p + tt.n + tt.u
			if summary.Total != total {
				t.Errorf("Total = %d, want %d", summary.Total, total)
			}
			if summary.Positive.Count != tt.p || summary.Positive.Percentage != tt.wantP {
				t.Errorf("Positive = %+v, want count %d pct %d", summary.Positive, tt.p, tt.wantP)
			}
			if summary.Negative.Count != tt.n || summary.Negative.Percentage != tt.wantN {
				t.Errorf("Negative = %+v, want count %d pct %d", summary.Negative, tt.n, tt.wantN)
			}
			if summary.Neutral.Count != tt.u || summary.Neutral.Percentage != tt.wantU {
				t.Errorf("Neutral = %+v, want count %d pct %d", summary.Neutral, tt.u, tt.wantU)
			}

			// Percentages are rounded independently; a 1/1/1 split sums
			// to 99 and that is correct behavior, not a bug.
			sum := summary.Positive.Percentage + summary.Negative.Percentage + summary.Neutral.Percentage
			if total > 0 && (sum < 97 || sum > 103) {
				t.Errorf("percentage sum %d outside rounding tolerance", sum)
			}
		})
	}
}
