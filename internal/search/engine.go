package search

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/keurcoiff/keurcoiff/internal/config"
	"github.com/keurcoiff/keurcoiff/internal/geo"
	"github.com/keurcoiff/keurcoiff/internal/models"
	"github.com/keurcoiff/keurcoiff/internal/ranking"
)

// Loader fetches the current catalog snapshot. It is used for the lazy
// first build when no index has been published yet. Fetch failures
// propagate unchanged; the engine never retries.
type Loader func(ctx context.Context) ([]*models.Salon, error)

// Engine answers text+filter searches, proximity queries, and
// suggestions against the current salon catalog.
//
// The engine holds exactly one piece of shared state: the published
// index. Rebuild constructs the replacement off to the side and
// publishes it with a single pointer swap, so concurrent readers see
// either the fully-old or fully-new index, never a partial one.
type Engine struct {
	cfg    *config.SearchConfig
	logger *zap.Logger
	scorer *ranking.Scorer
	loader Loader
	idx    atomic.Pointer[index]
}

// NewEngine creates a search engine. loader may be nil when the caller
// drives Rebuild explicitly.
func NewEngine(cfg *config.SearchConfig, loader Loader, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		scorer: ranking.NewScorer(ranking.DefaultWeights()),
		loader: loader,
	}
}

// Rebuild replaces the published index with one built from catalog.
// Inactive and unverified salons are dropped here; no filter can
// surface them later.
func (e *Engine) Rebuild(catalog []*models.Salon) {
	idx := buildIndex(catalog)
	e.idx.Store(idx)
	e.logger.Info("search index rebuilt",
		zap.Int("catalog", len(catalog)),
		zap.Int("indexed", len(idx.entries)),
	)
}

// Size returns the number of indexed salons, or 0 when no index has
// been built yet.
func (e *Engine) Size() int {
	if idx := e.idx.Load(); idx != nil {
		return len(idx.entries)
	}
	return 0
}

// current returns the published index, lazily building it via the
// loader on first use.
func (e *Engine) current(ctx context.Context) (*index, error) {
	if idx := e.idx.Load(); idx != nil {
		return idx, nil
	}
	if e.loader == nil {
		return &index{}, nil
	}
	catalog, err := e.loader(ctx)
	if err != nil {
		return nil, err
	}
	e.Rebuild(catalog)
	return e.idx.Load(), nil
}

type candidate struct {
	entry *Entry
	score float64
}

// Search runs a text+filter query and returns results ordered by
// relevance score descending; ties keep catalog order. An empty
// catalog or an unsatisfiable filter yields an empty result, never an
// error.
func (e *Engine) Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	idx, err := e.current(ctx)
	if err != nil {
		return nil, err
	}

	// A radius filter without a reference point cannot be evaluated;
	// it is skipped, not miscomputed.
	radiusActive := q.Filters.HasRadius() && q.Filters.Origin != nil
	if q.Filters.HasRadius() && q.Filters.Origin == nil {
		e.logger.Warn("distance filter ignored: no caller coordinate",
			zap.Float64("max_distance_km", q.Filters.MaxDistanceKm),
			zap.Float64("min_distance_km", q.Filters.MinDistanceKm),
		)
	}

	tokens := ranking.Tokenize(q.Query)
	candidates := make([]candidate, 0, len(idx.entries))
	for _, entry := range idx.entries {
		if !ranking.Matches(tokens, entry.SearchText) {
			continue
		}
		if !matchFilters(entry, &q.Filters, radiusActive) {
			continue
		}
		doc := &ranking.Doc{
			Name:       entry.Name,
			Quarter:    entry.Quarter,
			SearchText: entry.SearchText,
			Rating:     entry.salon.Rating.Average,
		}
		candidates = append(candidates, candidate{entry: entry, score: e.scorer.Score(doc, tokens)})
	}

	// Stable keeps catalog order for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}

	results := make([]*models.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		r := &models.SearchResult{Salon: c.entry.salon, Score: c.score}
		if q.Filters.Origin != nil && c.entry.Coord != nil {
			d := geo.Round2(geo.DistanceKm(*q.Filters.Origin, *c.entry.Coord))
			r.DistanceKm = &d
		}
		results = append(results, r)
	}

	return &models.SearchResponse{
		Results:     results,
		Count:       len(results),
		Query:       q.Query,
		QueryTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// Nearby returns published salons within radiusKm of origin, sorted by
// distance ascending. Salons without coordinates are excluded. This is
// the no-text-query path where distance is the sort key.
func (e *Engine) Nearby(ctx context.Context, origin models.Coordinate, radiusKm float64) ([]*models.SearchResult, error) {
	idx, err := e.current(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]*models.SearchResult, 0)
	for _, entry := range idx.entries {
		if entry.Coord == nil {
			continue
		}
		if !geo.Within(origin, *entry.Coord, radiusKm) {
			continue
		}
		d := geo.Round2(geo.DistanceKm(origin, *entry.Coord))
		results = append(results, &models.SearchResult{Salon: entry.salon, DistanceKm: &d})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].DistanceKm < *results[j].DistanceKm
	})
	return results, nil
}

// matchFilters applies the structured filters with AND semantics.
// Text-ish filters (quarter, city, service) are case-insensitive
// substring matches. radiusActive is true only when both a distance
// constraint and a caller coordinate are present.
func matchFilters(entry *Entry, f *models.Filters, radiusActive bool) bool {
	if f.Quarter != "" && !containsFold(entry.Quarter, f.Quarter) {
		return false
	}
	if f.City != "" && !containsFold(entry.City, f.City) {
		return false
	}
	if f.Service != "" {
		found := false
		for _, svc := range entry.salon.Services {
			if containsFold(svc.Name, f.Service) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.HomeService && !entry.salon.Features.HomeService {
		return false
	}
	if f.MinRating > 0 && entry.salon.Rating.Average < f.MinRating {
		return false
	}
	if f.MaxPrice != 0 {
		// A negative max price is unsatisfiable by construction: no
		// service has a negative price.
		affordable := false
		for _, svc := range entry.salon.Services {
			if svc.Price <= f.MaxPrice {
				affordable = true
				break
			}
		}
		if !affordable {
			return false
		}
	}
	if radiusActive {
		if entry.Coord == nil {
			return false
		}
		d := geo.DistanceKm(*f.Origin, *entry.Coord)
		if f.MaxDistanceKm > 0 && d > f.MaxDistanceKm {
			return false
		}
		if d < f.MinDistanceKm {
			return false
		}
	}
	return true
}
