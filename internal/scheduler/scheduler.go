// Package scheduler periodically refreshes weather for saved favorites so
// "last known" reads stay warm without blocking on upstream providers.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/climawiki/weather-service/internal/domain"
	"github.com/climawiki/weather-service/internal/observability"
	"github.com/climawiki/weather-service/internal/store"
)

// WeatherFetcher runs the aggregation pipeline for one location.
type WeatherFetcher interface {
	Fetch(ctx context.Context, loc domain.Location) (domain.NormalizedWeather, error)
}

// FavoritesLister returns the saved locations to refresh.
type FavoritesLister interface {
	Favorites(ctx context.Context) ([]domain.Location, error)
}

// Refresher runs the pipeline for every favorite on a fixed interval and
// records results in the snapshot cache. Failures are per-favorite: one
// upstream outage does not stop the remaining refreshes.
type Refresher struct {
	scheduler *gocron.Scheduler
	weather   WeatherFetcher
	favorites FavoritesLister
	snapshots *store.SnapshotCache
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Refresher. interval must be positive.
func New(weather WeatherFetcher, favorites FavoritesLister, snapshots *store.SnapshotCache, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		weather:   weather,
		favorites: favorites,
		snapshots: snapshots,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start schedules the periodic refresh job and runs the scheduler in the
// background.
func (r *Refresher) Start() error {
	if _, err := r.scheduler.Every(r.interval).Do(r.RunOnce); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	r.logger.Info("favorites refresher started", "interval", r.interval)
	return nil
}

// Stop stops the scheduler and cancels future jobs.
func (r *Refresher) Stop() {
	r.scheduler.Stop()
}

// RunOnce refreshes every saved favorite concurrently.
func (r *Refresher) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	favorites, err := r.favorites.Favorites(ctx)
	if err != nil {
		r.logger.Error("refresh skipped, cannot list favorites", "error", err)
		return
	}

	r.metrics.FavoritesTracked.Set(float64(len(favorites)))
	if len(favorites) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, loc := range favorites {
		wg.Add(1)
		go func(loc domain.Location) {
			defer wg.Done()

			weather, err := r.weather.Fetch(ctx, loc)
			if err != nil {
				r.metrics.RefreshRuns.WithLabelValues("error").Inc()
				r.logger.Warn("favorite refresh failed", "location_id", loc.ID, "error", err)
				return
			}

			r.snapshots.Put(loc.ID, weather)
			r.metrics.RefreshRuns.WithLabelValues("success").Inc()
		}(loc)
	}
	wg.Wait()

	r.logger.Debug("favorites refresh complete", "count", len(favorites))
}
