package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keurcoiff/keurcoiff/internal/metrics"
	"github.com/keurcoiff/keurcoiff/internal/models"
	"github.com/keurcoiff/keurcoiff/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := &models.SearchQuery{
		Query: params.Get("q"),
		Filters: models.Filters{
			Quarter:     params.Get("quarter"),
			City:        params.Get("city"),
			Service:     params.Get("service"),
			HomeService: params.Get("homeService") == "true",
		},
		Limit: s.cfg.Search.DefaultLimit,
	}

	var ok bool
	if query.Filters.MinRating, ok = s.floatParam(w, params.Get("minRating"), "minRating"); !ok {
		return
	}
	if query.Filters.MaxPrice, ok = s.floatParam(w, params.Get("maxPrice"), "maxPrice"); !ok {
		return
	}
	if query.Filters.MinDistanceKm, ok = s.floatParam(w, params.Get("minDistance"), "minDistance"); !ok {
		return
	}
	if query.Filters.MaxDistanceKm, ok = s.floatParam(w, params.Get("maxDistance"), "maxDistance"); !ok {
		return
	}
	origin, ok := s.coordinateParams(w, r)
	if !ok {
		return
	}
	query.Filters.Origin = origin

	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if limit > s.cfg.Search.MaxLimit {
			limit = s.cfg.Search.MaxLimit
		}
		query.Limit = limit
	}

	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	metrics.ObserveSearch("text")
	response, err := s.engine.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")
	metrics.ObserveSearch("suggest")
	suggestions, err := s.engine.Suggest(r.Context(), prefix, s.cfg.Search.SuggestionLimit)
	if err != nil {
		s.logger.Error("suggestions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, &models.SuggestionsResponse{Suggestions: suggestions, Query: prefix})
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if params.Get("latitude") == "" || params.Get("longitude") == "" {
		s.respondError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	origin, ok := s.coordinateParams(w, r)
	if !ok {
		return
	}

	radius := s.cfg.Search.DefaultRadiusKm
	if raw := params.Get("maxDistance"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid maxDistance")
			return
		}
		radius = parsed
	}

	s.logger.Debug("nearby request",
		zap.Float64("lat", origin.Lat), zap.Float64("lng", origin.Lng), zap.Float64("radius_km", radius))
	metrics.ObserveSearch("nearby")
	results, err := s.engine.Nearby(r.Context(), *origin, radius)
	if err != nil {
		s.logger.Error("nearby search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"results":      results,
		"count":        len(results),
		"userLocation": origin,
		"maxDistance":  radius,
	})
}

func (s *Server) handleListSalons(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	limit := s.cfg.Search.DefaultLimit
	offset := 0
	if raw := params.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > s.cfg.Search.MaxLimit {
		limit = s.cfg.Search.MaxLimit
	}
	if raw := params.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	salons, err := s.store.ListPublished(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list salons failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"salons": salons,
		"count":  len(salons),
	})
}

func (s *Server) handleGetSalon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	salon, err := s.store.GetSalon(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "salon not found")
			return
		}
		s.logger.Error("get salon failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, salon)
}

func (s *Server) handleCreateSalon(w http.ResponseWriter, r *http.Request) {
	var salon models.Salon
	if err := json.NewDecoder(r.Body).Decode(&salon); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateSalon(&salon); msg != "" {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	salon.ID = uuid.NewString()
	for i := range salon.Services {
		salon.Services[i].ID = uuid.NewString()
	}
	// New salons start active but unverified; they stay out of search
	// until verification.
	salon.IsActive = true
	salon.IsVerified = false

	if err := s.store.CreateSalon(r.Context(), &salon); err != nil {
		s.logger.Error("create salon failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.rebuildIndex(r)
	s.respondJSON(w, http.StatusCreated, map[string]string{
		"id":     salon.ID,
		"name":   salon.Name,
		"status": "pending verification",
	})
}

func (s *Server) handleUpdateSalon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var salon models.Salon
	if err := json.NewDecoder(r.Body).Decode(&salon); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateSalon(&salon); msg != "" {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := s.store.GetSalon(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "salon not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	salon.ID = id
	salon.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateSalon(r.Context(), &salon); err != nil {
		s.logger.Error("update salon failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.rebuildIndex(r)
	s.respondJSON(w, http.StatusOK, &salon)
}

func (s *Server) handleDeleteSalon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeactivateSalon(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "salon not found")
			return
		}
		s.logger.Error("deactivate salon failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.rebuildIndex(r)
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deactivated"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountSalons(r.Context())
	if err != nil {
		s.logger.Error("status: count salons failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"salons":  count,
		"indexed": s.engine.Size(),
		"config": map[string]interface{}{
			"default_limit":     s.cfg.Search.DefaultLimit,
			"max_limit":         s.cfg.Search.MaxLimit,
			"suggestion_limit":  s.cfg.Search.SuggestionLimit,
			"default_radius_km": s.cfg.Search.DefaultRadiusKm,
		},
	})
}

// rebuildIndex refreshes the search index from the current catalog
// after a write. Failures are logged; the write itself already
// succeeded.
func (s *Server) rebuildIndex(r *http.Request) {
	salons, err := s.store.ListSalons(r.Context())
	if err != nil {
		s.logger.Error("index rebuild failed", zap.Error(err))
		return
	}
	s.engine.Rebuild(salons)
}

// validateSalon checks the fields required to register a listing.
// Returns an empty string when valid.
func validateSalon(salon *models.Salon) string {
	if salon.Name == "" {
		return "name is required"
	}
	if salon.Location.Quarter == "" || salon.Location.City == "" {
		return "location quarter and city are required"
	}
	if salon.Location.Coordinates != nil && !salon.Location.Coordinates.IsValid() {
		return "invalid coordinates"
	}
	for _, svc := range salon.Services {
		if svc.Name == "" {
			return "service name is required"
		}
		if svc.Price < 0 {
			return "service price must not be negative"
		}
		if svc.Duration <= 0 {
			return "service duration must be positive"
		}
		if !models.ValidCategory(svc.Category) {
			return "unknown service category: " + svc.Category
		}
	}
	return ""
}

// floatParam parses an optional float query parameter. On failure it
// writes a 400 response and returns ok=false.
func (s *Server) floatParam(w http.ResponseWriter, raw, name string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return parsed, true
}

// coordinateParams parses the optional latitude/longitude pair. Both
// must be present together, parseable, and within range; otherwise a
// 400 is written and ok=false returned. Validation happens here so the
// geo package stays a total function.
func (s *Server) coordinateParams(w http.ResponseWriter, r *http.Request) (*models.Coordinate, bool) {
	params := r.URL.Query()
	rawLat, rawLng := params.Get("latitude"), params.Get("longitude")
	if rawLat == "" && rawLng == "" {
		return nil, true
	}
	if rawLat == "" || rawLng == "" {
		s.respondError(w, http.StatusBadRequest, "latitude and longitude must be supplied together")
		return nil, false
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid latitude")
		return nil, false
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid longitude")
		return nil, false
	}
	coord := &models.Coordinate{Lat: lat, Lng: lng}
	if !coord.IsValid() {
		s.respondError(w, http.StatusBadRequest, "coordinates out of range")
		return nil, false
	}
	return coord, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
