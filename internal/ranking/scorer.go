package ranking

import "strings"

// Weights configures the additive relevance score.
type Weights struct {
	Name         float64 // per token found in the salon name
	Quarter      float64 // per token found in the quarter
	Text         float64 // per token found anywhere in the search text
	RatingFactor float64 // multiplied by the rating average, added once
}

// DefaultWeights returns the canonical score weights.
func DefaultWeights() Weights {
	return Weights{
		Name:         10,
		Quarter:      8,
		Text:         5,
		RatingFactor: 2,
	}
}

// Doc is the scorable view of an index entry. All text fields must
// already be lowercased by the index builder.
type Doc struct {
	Name       string
	Quarter    string
	SearchText string
	Rating     float64
}

// Scorer computes relevance scores for candidate salons.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score returns the relevance score of doc for the given tokens.
// Each token contributes to every bucket it matches: a token present
// in the name, the quarter, and the search text adds all three
// weights. The rating bonus is added once, independent of tokens, so
// an empty token set ranks purely by rating.
func (s *Scorer) Score(doc *Doc, tokens []string) float64 {
	score := 0.0
	for _, token := range tokens {
		if strings.Contains(doc.Name, token) {
			score += s.weights.Name
		}
		if strings.Contains(doc.Quarter, token) {
			score += s.weights.Quarter
		}
		if strings.Contains(doc.SearchText, token) {
			score += s.weights.Text
		}
	}
	score += doc.Rating * s.weights.RatingFactor
	return score
}

// Matches reports whether every token is a substring of text.
// An empty token set trivially matches.
func Matches(tokens []string, text string) bool {
	for _, token := range tokens {
		if !strings.Contains(text, token) {
			return false
		}
	}
	return true
}
