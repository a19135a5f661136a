package ranking

import (
	"math"
	"testing"
)

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	doc := &Doc{
		Name:       "salon awa beauty",
		Quarter:    "plateau",
		SearchText: "salon awa beauty plateau dakar tresses simples pose weave home service",
		Rating:     4.8,
	}

	tests := []struct {
		name   string
		tokens []string
		want   float64
	}{
		{
			// Rating bonus only: 4.8 * 2.
			name:   "no tokens ranks by rating",
			tokens: nil,
			want:   9.6,
		},
		{
			// "awa" hits name and search text: 10 + 5 + 9.6.
			name:   "token in name and text",
			tokens: []string{"awa"},
			want:   24.6,
		},
		{
			// "plateau" hits quarter and search text: 8 + 5 + 9.6.
			name:   "token in quarter and text",
			tokens: []string{"plateau"},
			want:   22.6,
		},
		{
			// "tresses" hits search text only: 5 + 9.6.
			name:   "token in text only",
			tokens: []string{"tresses"},
			want:   14.6,
		},
		{
			// Additive across tokens: (10+5) + (8+5) + 9.6.
			name:   "multiple tokens stack",
			tokens: []string{"awa", "plateau"},
			want:   37.6,
		},
		{
			name:   "no match still gets rating bonus",
			tokens: []string{"manucure"},
			want:   9.6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(doc, tt.tokens)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScorer_tokenInAllThreeBuckets(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	doc := &Doc{
		Name:       "plateau coiffure",
		Quarter:    "plateau",
		SearchText: "plateau coiffure plateau dakar",
		Rating:     0,
	}
	// 10 + 8 + 5: one token can contribute to every bucket.
	if got := scorer.Score(doc, []string{"plateau"}); got != 23 {
		t.Errorf("Score() = %v, want 23", got)
	}
}
