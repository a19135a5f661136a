package models

// Filters are the structured constraints of a search request.
// Omitted (zero-valued) filters impose no constraint. All text filters
// are case-insensitive substring matches.
type Filters struct {
	Quarter string `json:"quarter,omitempty"`
	City    string `json:"city,omitempty"`
	Service string `json:"service,omitempty"`
	// HomeService constrains only when true; false means "don't care".
	HomeService bool    `json:"homeService,omitempty"`
	MinRating   float64 `json:"minRating,omitempty"`
	MaxPrice    float64 `json:"maxPrice,omitempty"`
	// Origin is the caller's position. Required for the distance
	// filters to apply; without it they are ignored.
	Origin        *Coordinate `json:"origin,omitempty"`
	MinDistanceKm float64     `json:"minDistance,omitempty"`
	MaxDistanceKm float64     `json:"maxDistance,omitempty"`
}

// HasRadius reports whether a distance constraint was requested.
func (f *Filters) HasRadius() bool {
	return f.MinDistanceKm > 0 || f.MaxDistanceKm > 0
}

// SearchQuery represents a search request: free text plus filters.
type SearchQuery struct {
	Query   string  `json:"query"`
	Filters Filters `json:"filters"`
	Limit   int     `json:"limit,omitempty"`
}

// Validate normalizes the query. An empty query string is valid: it
// matches every published salon. Limit is clamped to [1, 100] with a
// default of 10 when unset.
func (q *SearchQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}
