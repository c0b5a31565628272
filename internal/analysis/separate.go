package analysis

import "github.com/rlou/tubescope/internal/domain"

// SeparatedComments holds the three disjoint sentiment partitions of a
// classified comment list, each preserving relative order.
type SeparatedComments struct {
	Positive []domain.ClassifiedComment
	Negative []domain.ClassifiedComment
	Neutral  []domain.ClassifiedComment
}

// Separate partitions classified comments by sentiment. Labels outside
// the three known values land in the neutral bucket.
func Separate(comments []domain.ClassifiedComment) SeparatedComments {
	var out SeparatedComments
	for _, c := range comments {
		switch c.Sentiment {
		case domain.SentimentPositive:
			out.Positive = append(out.Positive, c)
		case domain.SentimentNegative:
			out.Negative = append(out.Negative, c)
		default:
			out.Neutral = append(out.Neutral, c)
		}
	}
	return out
}
