// Package pipeline orchestrates the fetch-merge-bucket-normalize flow that
// turns a location into one NormalizedWeather.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/climawiki/weather-service/internal/domain"
	"github.com/climawiki/weather-service/internal/observability"
)

// CurrentFetcher retrieves the raw current-conditions snapshot.
type CurrentFetcher interface {
	Current(ctx context.Context, coord domain.Coordinates) (domain.Observation, error)
}

// ForecastFetcher retrieves the ordered 3-hourly forecast sequence.
type ForecastFetcher interface {
	Forecast(ctx context.Context, coord domain.Coordinates) ([]domain.ForecastEntry, error)
}

// Service runs the aggregation pipeline. Each call is independent and
// stateless: nothing is cached or retried, and a failure of either
// upstream fetch fails the whole run with no partial result.
type Service struct {
	current  CurrentFetcher
	forecast ForecastFetcher
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a pipeline Service.
func New(current CurrentFetcher, forecast ForecastFetcher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		current:  current,
		forecast: forecast,
		logger:   logger,
		metrics:  metrics,
	}
}

type currentResult struct {
	obs domain.Observation
	err error
}

type forecastResult struct {
	entries []domain.ForecastEntry
	err     error
}

// Fetch issues the two upstream fetches concurrently, waits for both, and
// normalizes the merged payloads. The join is fail-fast: the first error
// cancels the sibling fetch and becomes the result.
func (s *Service) Fetch(ctx context.Context, loc domain.Location) (domain.NormalizedWeather, error) {
	start := time.Now()

	obs, entries, err := s.fetchBoth(ctx, loc.Coord)
	if err != nil {
		s.metrics.PipelineRequests.WithLabelValues("error").Inc()
		s.logger.Error("weather fetch failed", "location_id", loc.ID, "error", err)
		return domain.NormalizedWeather{}, err
	}

	result := domain.Aggregate(loc, obs, entries)

	s.metrics.PipelineRequests.WithLabelValues("success").Inc()
	s.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	s.logger.Debug("weather fetch complete",
		"location_id", loc.ID,
		"hourly", len(result.Hourly),
		"daily", len(result.Daily),
	)
	return result, nil
}

// fetchBoth fans out to the two endpoints and fans back in. Buffered
// channels let the losing goroutine finish without leaking after an early
// return.
func (s *Service) fetchBoth(ctx context.Context, coord domain.Coordinates) (domain.Observation, []domain.ForecastEntry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	curCh := make(chan currentResult, 1)
	fcCh := make(chan forecastResult, 1)

	go func() {
		obs, err := s.current.Current(ctx, coord)
		curCh <- currentResult{obs: obs, err: err}
	}()
	go func() {
		entries, err := s.forecast.Forecast(ctx, coord)
		fcCh <- forecastResult{entries: entries, err: err}
	}()

	var (
		obs     domain.Observation
		entries []domain.ForecastEntry
	)
	for i := 0; i < 2; i++ {
		select {
		case r := <-curCh:
			if r.err != nil {
				return domain.Observation{}, nil, r.err
			}
			obs = r.obs
		case r := <-fcCh:
			if r.err != nil {
				return domain.Observation{}, nil, r.err
			}
			entries = r.entries
		}
	}
	return obs, entries, nil
}
