package analysis

import (
	"math"

	"github.com/rlou/tubescope/internal/domain"
)

// Summarize rolls the separated comments up into per-bucket counts and
// percentages. An empty input yields all zeros; percentages are rounded
// independently and need not sum to exactly 100.
func Summarize(sep SeparatedComments) *domain.SentimentSummary {
	total := len(sep.Positive) + len(sep.Negative) + len(sep.Neutral)
	summary := &domain.SentimentSummary{Total: total}
	if total == 0 {
		return summary
	}

	summary.Positive = bucket(len(sep.Positive), total)
	summary.Negative = bucket(len(sep.Negative), total)
	summary.Neutral = bucket(len(sep.Neutral), total)
	return summary
}

func bucket(count, total int) domain.SentimentCount {
	return domain.SentimentCount{
		Count:      count,
		Percentage: int(math.Round(float64(count) / float64(total) * 100)),
	}
}
