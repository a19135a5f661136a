// Package search provides the salon search engine: a denormalized
// in-memory index over the catalog, filter composition, and relevance
// ranking.
package search

import (
	"strings"

	"github.com/keurcoiff/keurcoiff/internal/models"
)

// Entry is the denormalized, search-optimized projection of one
// published salon. Entries are built wholesale at index construction
// and are never mutated field-by-field afterwards.
type Entry struct {
	ID         string
	Name       string // lowercased
	Quarter    string // lowercased
	City       string // lowercased
	SearchText string
	Coord      *models.Coordinate

	// salon is the full record borrowed from the catalog snapshot
	// this index was built from. Read-only.
	salon *models.Salon
}

// index is an immutable snapshot, published as a whole. Entry order is
// catalog order, which is also the tie-break order for equal scores.
type index struct {
	entries []*Entry
}

// buildIndex filters the catalog to published salons and builds one
// entry per surviving record.
func buildIndex(catalog []*models.Salon) *index {
	entries := make([]*Entry, 0, len(catalog))
	for _, s := range catalog {
		if s == nil || !s.Published() {
			continue
		}
		entries = append(entries, &Entry{
			ID:         s.ID,
			Name:       strings.ToLower(s.Name),
			Quarter:    strings.ToLower(s.Location.Quarter),
			City:       strings.ToLower(s.Location.City),
			SearchText: buildSearchText(s),
			Coord:      s.Location.Coordinates,
			salon:      s,
		})
	}
	return &index{entries: entries}
}

// buildSearchText concatenates the searchable fields of a salon into a
// single lowercase string: name, quarter, city, address, service
// names, and a tag per enabled feature. Matching is by substring, so
// concatenation order does not affect results.
func buildSearchText(s *models.Salon) string {
	parts := make([]string, 0, 4+len(s.Services)+6)
	parts = append(parts, s.Name, s.Location.Quarter, s.Location.City, s.Location.Address)
	for _, svc := range s.Services {
		parts = append(parts, svc.Name)
	}
	parts = append(parts, s.Features.Tags()...)
	return strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))
}
