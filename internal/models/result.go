package models

// SearchResult is a single search hit. The salon record is borrowed
// from the catalog snapshot and never mutated; the computed distance
// lives alongside it, not inside it.
type SearchResult struct {
	Salon *Salon  `json:"salon"`
	Score float64 `json:"score"`
	// DistanceKm is set (rounded to 2 decimals) when the caller
	// supplied a coordinate and the salon has one.
	DistanceKm *float64 `json:"distance,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results     []*SearchResult `json:"results"`
	Count       int             `json:"count"`
	Query       string          `json:"query"`
	QueryTimeMs int64           `json:"query_time_ms"`
}

// SuggestionsResponse is the response for a suggestion request.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Query       string   `json:"query"`
}
