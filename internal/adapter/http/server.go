// Package http exposes the service API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/climawiki/weather-service/internal/domain"
	"github.com/climawiki/weather-service/internal/store"
)

// WeatherService runs the aggregation pipeline for one location.
type WeatherService interface {
	Fetch(ctx context.Context, loc domain.Location) (domain.NormalizedWeather, error)
}

// Repository is the favorites and settings persistence surface the API
// depends on.
type Repository interface {
	AddFavorite(ctx context.Context, loc domain.Location) (domain.Location, error)
	Favorites(ctx context.Context) ([]domain.Location, error)
	RemoveFavorite(ctx context.Context, id string) error
	RenameFavorite(ctx context.Context, id, customName string) error
	ReorderFavorites(ctx context.Context, ids []string) error
	Settings(ctx context.Context) (store.Settings, error)
	SaveSettings(ctx context.Context, settings store.Settings) error
	Ping(ctx context.Context) error
}

// SnapshotReader serves the last refreshed weather for a favorite.
type SnapshotReader interface {
	Latest(id string) (domain.NormalizedWeather, error)
}

// Server exposes the HTTP API.
type Server struct {
	httpServer *http.Server
	weather    WeatherService
	resolver   domain.PlaceResolver
	repo       Repository
	snapshots  SnapshotReader
	logger     *slog.Logger
}

// NewServer creates the API server and wires all routes.
func NewServer(addr string, weather WeatherService, resolver domain.PlaceResolver, repo Repository, snapshots SnapshotReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		weather:   weather,
		resolver:  resolver,
		repo:      repo,
		snapshots: snapshots,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/weather", s.handleWeather)
	mux.HandleFunc("GET /api/v1/geocode", s.handleGeocode)
	mux.HandleFunc("GET /api/v1/geocode/reverse", s.handleReverseGeocode)

	mux.HandleFunc("GET /api/v1/favorites", s.handleListFavorites)
	mux.HandleFunc("POST /api/v1/favorites", s.handleAddFavorite)
	mux.HandleFunc("PUT /api/v1/favorites/order", s.handleReorderFavorites)
	mux.HandleFunc("DELETE /api/v1/favorites/{id}", s.handleRemoveFavorite)
	mux.HandleFunc("PATCH /api/v1/favorites/{id}", s.handleRenameFavorite)
	mux.HandleFunc("GET /api/v1/favorites/{id}/weather", s.handleFavoriteWeather)

	mux.HandleFunc("GET /api/v1/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/v1/settings", s.handlePutSettings)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
