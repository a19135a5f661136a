package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/keurcoiff/keurcoiff/internal/config"
	"github.com/keurcoiff/keurcoiff/internal/models"
)

func testSearchConfig() *config.SearchConfig {
	return &config.SearchConfig{DefaultLimit: 10, MaxLimit: 100, SuggestionLimit: 8, DefaultRadiusKm: 5}
}

func coord(lat, lng float64) *models.Coordinate {
	return &models.Coordinate{Lat: lat, Lng: lng}
}

// testCatalog mirrors the seeded Dakar salons: A and B are the two
// records from the reference scenario, C adds coordinates further out,
// D and E must never surface (inactive / unverified).
func testCatalog() []*models.Salon {
	return []*models.Salon{
		{
			ID:   "salon-a",
			Name: "Prestige Dakar",
			Location: models.Location{
				Address: "Rue 10, Plateau", Quarter: "Plateau", City: "Dakar",
				Coordinates: coord(14.6928, -17.4467),
			},
			Services: []models.Service{
				{Name: "Tresses simples", Price: 3500, Duration: 120, Category: models.CategoryFemme},
			},
			Features:   models.Features{HomeService: true, MobilePayment: true},
			Rating:     models.Rating{Average: 4.9, Count: 47},
			IsVerified: true,
			IsActive:   true,
		},
		{
			ID:   "salon-b",
			Name: "Chez Ibra",
			Location: models.Location{
				Address: "Rue des artisans, Ouakam", Quarter: "Ouakam", City: "Dakar",
				Coordinates: coord(14.7245, -17.4810),
			},
			Services: []models.Service{
				{Name: "Coupe homme", Price: 2500, Duration: 45, Category: models.CategoryHomme},
			},
			Features:   models.Features{MobilePayment: true},
			Rating:     models.Rating{Average: 4.8, Count: 89},
			IsVerified: true,
			IsActive:   true,
		},
		{
			ID:   "salon-c",
			Name: "Beauty Dakar",
			Location: models.Location{
				Address: "Route de la Corniche, Almadies", Quarter: "Almadies", City: "Dakar",
				Coordinates: coord(14.7390, -17.5166),
			},
			Services: []models.Service{
				{Name: "Coupe et brushing", Price: 8000, Duration: 90, Category: models.CategoryFemme},
				{Name: "Soins cheveux", Price: 6000, Duration: 60, Category: models.CategoryFemme},
			},
			Features:   models.Features{Parking: true, Wifi: true},
			Rating:     models.Rating{Average: 4.7, Count: 124},
			IsVerified: true,
			IsActive:   true,
		},
		{
			ID:         "salon-inactive",
			Name:       "Fermé Coiffure",
			Location:   models.Location{Quarter: "Plateau", City: "Dakar"},
			Rating:     models.Rating{Average: 5},
			IsVerified: true,
			IsActive:   false,
		},
		{
			ID:       "salon-unverified",
			Name:     "Nouveau Salon Tresses",
			Location: models.Location{Quarter: "Plateau", City: "Dakar"},
			Services: []models.Service{
				{Name: "Tresses vanilles", Price: 1000, Duration: 60, Category: models.CategoryFemme},
			},
			Rating:     models.Rating{Average: 5},
			IsVerified: false,
			IsActive:   true,
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(testSearchConfig(), nil, zap.NewNop())
	e.Rebuild(testCatalog())
	return e
}

func ids(results []*models.SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Salon.ID)
	}
	return out
}

func TestEngine_Search_textQuery(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.Search(context.Background(), &models.SearchQuery{Query: "tresses"})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(resp.Results); len(got) != 1 || got[0] != "salon-a" {
		t.Errorf("search(tresses) = %v, want [salon-a]", got)
	}
}

func TestEngine_Search_maxPrice(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.Search(context.Background(), &models.SearchQuery{
		Filters: models.Filters{MaxPrice: 3000},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(resp.Results); len(got) != 1 || got[0] != "salon-b" {
		t.Errorf("search(maxPrice=3000) = %v, want [salon-b]", got)
	}
}

func TestEngine_Search_negativeMaxPriceUnsatisfiable(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.Search(context.Background(), &models.SearchQuery{
		Filters: models.Filters{MaxPrice: -100},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("negative maxPrice matched %v", ids(resp.Results))
	}
}

func TestEngine_Search_emptyQueryRanksByRating(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.Search(context.Background(), &models.SearchQuery{Query: ""})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"salon-a", "salon-b", "salon-c"}
	got := ids(resp.Results)
	if len(got) != len(want) {
		t.Fatalf("empty query returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("empty query order = %v, want %v (rating desc)", got, want)
			break
		}
	}
}

func TestEngine_Search_excludesUnpublished(t *testing.T) {
	e := newTestEngine(t)
	// "tresses" also matches the unverified salon's service name, and
	// the inactive salon has the best rating. Neither may surface.
	for _, q := range []*models.SearchQuery{
		{Query: ""},
		{Query: "tresses"},
		{Filters: models.Filters{Quarter: "Plateau"}},
	} {
		resp, err := e.Search(context.Background(), q)
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range resp.Results {
			if r.Salon.ID == "salon-inactive" || r.Salon.ID == "salon-unverified" {
				t.Errorf("query %+v surfaced unpublished salon %s", q, r.Salon.ID)
			}
		}
	}
}

func TestEngine_Search_shortTokensAreNoOp(t *testing.T) {
	e := newTestEngine(t)
	// All tokens are <= 2 chars, so text filtering is a no-op rather
	// than a reject-all.
	resp, err := e.Search(context.Background(), &models.SearchQuery{Query: "le a dz"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 3 {
		t.Errorf("short-token query returned %d results, want 3", len(resp.Results))
	}
}

func TestEngine_Search_structuredFilters(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name    string
		filters models.Filters
		want    []string
	}{
		{"quarter substring case-insensitive", models.Filters{Quarter: "plat"}, []string{"salon-a"}},
		{"city", models.Filters{City: "dakar"}, []string{"salon-a", "salon-b", "salon-c"}},
		{"service substring", models.Filters{Service: "coupe"}, []string{"salon-b", "salon-c"}},
		{"home service", models.Filters{HomeService: true}, []string{"salon-a"}},
		{"min rating", models.Filters{MinRating: 4.85}, []string{"salon-a"}},
		{"unmatched quarter", models.Filters{Quarter: "Mermoz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.Search(context.Background(), &models.SearchQuery{Filters: tt.filters})
			if err != nil {
				t.Fatal(err)
			}
			got := ids(resp.Results)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			seen := make(map[string]bool)
			for _, id := range got {
				seen[id] = true
			}
			for _, id := range tt.want {
				if !seen[id] {
					t.Errorf("missing %s in %v", id, got)
				}
			}
		})
	}
}

func TestEngine_Search_radiusFilter(t *testing.T) {
	e := newTestEngine(t)
	// From Plateau: salon-a at 0 km, salon-b at ~5.1 km, salon-c at ~9.1 km.
	resp, err := e.Search(context.Background(), &models.SearchQuery{
		Filters: models.Filters{Origin: coord(14.6928, -17.4467), MaxDistanceKm: 6},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := ids(resp.Results)
	if len(got) != 2 {
		t.Fatalf("radius 6km = %v, want salon-a and salon-b", got)
	}
	for _, r := range resp.Results {
		if r.DistanceKm == nil {
			t.Errorf("result %s missing distance annotation", r.Salon.ID)
		}
	}
}

func TestEngine_Search_minDistanceExcludesClose(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.Search(context.Background(), &models.SearchQuery{
		Filters: models.Filters{Origin: coord(14.6928, -17.4467), MinDistanceKm: 1, MaxDistanceKm: 6},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(resp.Results); len(got) != 1 || got[0] != "salon-b" {
		t.Errorf("min 1km max 6km = %v, want [salon-b]", got)
	}
}

func TestEngine_Search_radiusWithoutOriginIgnored(t *testing.T) {
	e := newTestEngine(t)
	with, err := e.Search(context.Background(), &models.SearchQuery{
		Filters: models.Filters{MaxDistanceKm: 5},
	})
	if err != nil {
		t.Fatal(err)
	}
	without, err := e.Search(context.Background(), &models.SearchQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(with.Results) != len(without.Results) {
		t.Errorf("radius without coordinate changed the result set: %d vs %d",
			len(with.Results), len(without.Results))
	}
}

func TestEngine_Search_distanceAnnotationRounded(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.Search(context.Background(), &models.SearchQuery{
		Query:   "ibra",
		Filters: models.Filters{Origin: coord(14.6928, -17.4467)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %v", ids(resp.Results))
	}
	d := resp.Results[0].DistanceKm
	if d == nil {
		t.Fatal("distance not annotated")
	}
	if *d < 5.0 || *d > 5.2 {
		t.Errorf("distance = %v, want ~5.10", *d)
	}
}

func TestEngine_Search_limit(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.Search(context.Background(), &models.SearchQuery{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("limit 1 returned %d results", len(resp.Results))
	}
	if resp.Results[0].Salon.ID != "salon-a" {
		t.Errorf("top result = %s, want salon-a", resp.Results[0].Salon.ID)
	}
}

func TestEngine_Search_emptyCatalog(t *testing.T) {
	e := NewEngine(testSearchConfig(), nil, zap.NewNop())
	e.Rebuild(nil)
	resp, err := e.Search(context.Background(), &models.SearchQuery{Query: "tresses"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("empty catalog returned %v", ids(resp.Results))
	}
}

func TestEngine_Search_lazyRebuildViaLoader(t *testing.T) {
	calls := 0
	loader := func(ctx context.Context) ([]*models.Salon, error) {
		calls++
		return testCatalog(), nil
	}
	e := NewEngine(testSearchConfig(), loader, zap.NewNop())
	for i := 0; i < 3; i++ {
		resp, err := e.Search(context.Background(), &models.SearchQuery{})
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Results) != 3 {
			t.Fatalf("got %d results", len(resp.Results))
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1 (build once, reuse)", calls)
	}
}

func TestEngine_Search_loaderErrorPropagates(t *testing.T) {
	sentinel := errors.New("catalog unavailable")
	e := NewEngine(testSearchConfig(), func(ctx context.Context) ([]*models.Salon, error) {
		return nil, sentinel
	}, zap.NewNop())
	if _, err := e.Search(context.Background(), &models.SearchQuery{}); !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want wrapped %v", err, sentinel)
	}
}

func TestEngine_Rebuild_idempotent(t *testing.T) {
	e := newTestEngine(t)
	first := e.idx.Load()
	e.Rebuild(testCatalog())
	second := e.idx.Load()
	if len(first.entries) != len(second.entries) {
		t.Fatalf("entry counts differ: %d vs %d", len(first.entries), len(second.entries))
	}
	for i := range first.entries {
		if first.entries[i].SearchText != second.entries[i].SearchText {
			t.Errorf("searchText differs at %d:\n%q\n%q",
				i, first.entries[i].SearchText, second.entries[i].SearchText)
		}
	}
}

func TestEngine_Nearby(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Nearby(context.Background(), models.Coordinate{Lat: 14.6928, Lng: -17.4467}, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"salon-a", "salon-b", "salon-c"}
	got := ids(results)
	if len(got) != len(want) {
		t.Fatalf("nearby = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("nearby order = %v, want %v (distance asc)", got, want)
			break
		}
	}
	for i := 1; i < len(results); i++ {
		if *results[i].DistanceKm < *results[i-1].DistanceKm {
			t.Error("nearby results not sorted by distance")
		}
	}
}

func TestEngine_Nearby_radiusCutoff(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Nearby(context.Background(), models.Coordinate{Lat: 14.6928, Lng: -17.4467}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(results); len(got) != 1 || got[0] != "salon-a" {
		t.Errorf("nearby 1km = %v, want [salon-a]", got)
	}
}

func TestBuildSearchText_containsFeatureTags(t *testing.T) {
	s := testCatalog()[0]
	text := buildSearchText(s)
	for _, want := range []string{"prestige dakar", "plateau", "tresses simples", "home service", "mobile payment"} {
		if !contains(text, want) {
			t.Errorf("searchText %q missing %q", text, want)
		}
	}
}

func contains(haystack, needle string) bool {
	return containsFold(haystack, needle)
}
