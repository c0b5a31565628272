package analysis

import (
	"testing"

	"github.com/rlou/tubescope/internal/domain"
)

func TestSeparate(t *testing.T) {
	input := []domain.ClassifiedComment{
		{Comment: "love it", Sentiment: domain.SentimentPositive},
		{Comment: "what camera?", Sentiment: domain.SentimentNeutral},
		{Comment: "too long", Sentiment: domain.SentimentNegative},
		{Comment: "amazing edit", Sentiment: domain.SentimentPositive},
		{Comment: "audio was bad", Sentiment: domain.SentimentNegative},
		{Comment: "posted in 2024", Sentiment: domain.SentimentNeutral},
	}

	sep := Separate(input)

	if got := len(sep.Positive) + len(sep.Negative) + len(sep.Neutral); got != len(input) {
		t.Fatalf("partition sizes sum to %d, want %d", got, len(input))
	}

	// Union of the three buckets equals the input as a multiset.
	seen := make(map[string]int)
	for _, bucket := range [][]domain.ClassifiedComment{sep.Positive, sep.Negative, sep.Neutral} {
		for _, c := range bucket {
			seen[c.Comment]++
		}
	}
	for _, c := range input {
		seen[c.Comment]--
	}
	for text, count := range seen {
		if count != 0 {
			t.Errorf("comment %q appears %+d times relative to input", text, count)
		}
	}

	// Relative order preserved within buckets.
	if sep.Positive[0].Comment != "love it" || sep.Positive[1].Comment != "amazing edit" {
		t.Errorf("positive bucket out of order: %+v", sep.Positive)
	}
	if sep.Negative[0].Comment != "too long" || sep.Negative[1].Comment != "audio was bad" {
		t.Errorf("negative bucket out of order: %+v", sep.Negative)
	}
}

func TestSeparateUnknownLabelGoesNeutral(t *testing.T) {
	sep := Separate([]domain.ClassifiedComment{
		{Comment: "weird", Sentiment: domain.Sentiment("mixed")},
	})
	if len(sep.Neutral) != 1 {
		t.Fatalf("unknown label not routed to neutral: %+v", sep)
	}
}

func TestSeparateEmpty(t *testing.T) {
	sep := Separate(nil)
	if len(sep.Positive)+len(sep.Negative)+len(sep.Neutral) != 0 {
		t.Fatalf("empty input produced non-empty partition: %+v", sep)
	}
}
