// Package server provides the HTTP API for the KeurCoiff catalog and search.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/keurcoiff/keurcoiff/internal/config"
	"github.com/keurcoiff/keurcoiff/internal/metrics"
	"github.com/keurcoiff/keurcoiff/internal/search"
	"github.com/keurcoiff/keurcoiff/internal/storage"
)

// Server is the HTTP server for the KeurCoiff API.
type Server struct {
	engine *search.Engine
	store  storage.Catalog
	cfg    *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *search.Engine, store storage.Catalog, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		engine: engine,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(metrics.Middleware())

	r.Route("/api/v1/salons", func(r chi.Router) {
		r.Get("/", s.handleListSalons)
		r.Post("/", s.handleCreateSalon)
		r.Get("/search", s.handleSearch)
		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/nearby", s.handleNearby)
		r.Get("/{id}", s.handleGetSalon)
		r.Put("/{id}", s.handleUpdateSalon)
		r.Delete("/{id}", s.handleDeleteSalon)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
