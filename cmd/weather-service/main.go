package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/climawiki/weather-service/internal/adapter/http"
	"github.com/climawiki/weather-service/internal/adapter/nominatim"
	"github.com/climawiki/weather-service/internal/adapter/openweather"
	"github.com/climawiki/weather-service/internal/config"
	"github.com/climawiki/weather-service/internal/geocoding"
	"github.com/climawiki/weather-service/internal/observability"
	"github.com/climawiki/weather-service/internal/pipeline"
	"github.com/climawiki/weather-service/internal/scheduler"
	"github.com/climawiki/weather-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if cfg.OpenWeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY is empty, upstream requests will fail")
	}

	db, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	owm := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherURL, cfg.OpenWeatherGeoURL,
		cfg.UpstreamTimeout, logger, metrics)
	nom := nominatim.NewClient(cfg.NominatimURL, cfg.UserAgent, cfg.UpstreamTimeout, logger)

	resolver := geocoding.NewCachedResolver(
		geocoding.NewResolver(nom, owm, logger, metrics),
		cfg.GeocodeCacheSize, metrics)

	weather := pipeline.New(owm, owm, logger, metrics)
	snapshots := store.NewSnapshotCache()

	srv := httpadapter.NewServer(cfg.HTTPAddr, weather, resolver, db, snapshots, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var refresher *scheduler.Refresher
	if cfg.RefreshInterval > 0 {
		refresher = scheduler.New(weather, db, snapshots, cfg.RefreshInterval, logger, metrics)
		if err := refresher.Start(); err != nil {
			logger.Error("failed to start refresher", "error", err)
			os.Exit(1)
		}
		logger.Info("favorites refresher enabled", "interval", cfg.RefreshInterval)
	} else {
		logger.Info("favorites refresher disabled")
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if refresher != nil {
		refresher.Stop()
	}

	logger.Info("shutdown complete")
}
