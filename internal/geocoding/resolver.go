// Package geocoding chains the primary and fallback geocoding providers
// and decorates them with an in-memory cache.
package geocoding

import (
	"context"
	"errors"
	"log/slog"

	"github.com/climawiki/weather-service/internal/domain"
	"github.com/climawiki/weather-service/internal/observability"
)

// ErrEmptyQuery is returned when Resolve is called with a blank query.
var ErrEmptyQuery = errors.New("geocoding query must not be empty")

// maxResults bounds the candidate list returned per query.
const maxResults = 5

// PrimaryProvider is the full-featured geocoder (address-level search plus
// reverse lookup).
type PrimaryProvider interface {
	Search(ctx context.Context, query string) ([]domain.Place, error)
	Reverse(ctx context.Context, lat, lon float64) (*domain.Place, error)
}

// FallbackProvider is the city-level geocoder consulted only after the
// primary fails.
type FallbackProvider interface {
	DirectGeocode(ctx context.Context, query string, limit int) ([]domain.Place, error)
}

// Resolver implements domain.PlaceResolver over a primary provider with a
// sequential fallback for the search path. Reverse lookups have no
// fallback; their errors propagate.
type Resolver struct {
	primary  PrimaryProvider
	fallback FallbackProvider
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewResolver creates a Resolver.
func NewResolver(primary PrimaryProvider, fallback FallbackProvider, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve returns up to five ranked candidates for a free-text query.
// Total failure of both providers degrades to an empty result rather than
// an error, keeping callers non-blocking.
func (r *Resolver) Resolve(ctx context.Context, query string) ([]domain.Place, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	results, err := r.primary.Search(ctx, query)
	if err == nil {
		r.observeSearch(results)
		return cap5(results), nil
	}

	r.logger.Warn("primary geocoder failed, trying fallback", "query", query, "error", err)
	r.metrics.GeocodeFallbacks.Inc()

	results, err = r.fallback.DirectGeocode(ctx, query, maxResults)
	if err != nil {
		r.logger.Warn("fallback geocoder failed", "query", query, "error", err)
		r.metrics.GeocodeRequests.WithLabelValues("search", "error").Inc()
		return []domain.Place{}, nil
	}

	r.observeSearch(results)
	return cap5(results), nil
}

// ReverseResolve returns the best-matching place for a position, or nil
// when the provider has no match.
func (r *Resolver) ReverseResolve(ctx context.Context, lat, lon float64) (*domain.Place, error) {
	result, err := r.primary.Reverse(ctx, lat, lon)
	if err != nil {
		r.metrics.GeocodeRequests.WithLabelValues("reverse", "error").Inc()
		return nil, err
	}
	if result == nil {
		r.metrics.GeocodeRequests.WithLabelValues("reverse", "empty").Inc()
		return nil, nil
	}
	r.metrics.GeocodeRequests.WithLabelValues("reverse", "success").Inc()
	return result, nil
}

func (r *Resolver) observeSearch(results []domain.Place) {
	outcome := "success"
	if len(results) == 0 {
		outcome = "empty"
	}
	r.metrics.GeocodeRequests.WithLabelValues("search", outcome).Inc()
}

func cap5(results []domain.Place) []domain.Place {
	if len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}
