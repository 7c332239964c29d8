package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// OpenWeatherMap configuration. The API key may be empty: weather and
	// fallback-geocoding calls will then fail upstream with an auth error,
	// which keeps local development without a key possible.
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	OpenWeatherGeoURL string

	// Nominatim geocoding configuration.
	NominatimURL string
	UserAgent    string

	UpstreamTimeout  time.Duration
	GeocodeCacheSize int

	// Favorites persistence and background refresh.
	DBPath          string
	RefreshInterval time.Duration // 0 disables the refresher
}

// Load reads configuration from the environment (and a .env file when
// present), applying defaults where unset.
func Load() (*Config, error) {
	// A missing .env file is the normal production case.
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseRefreshInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherURL:    envOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		OpenWeatherGeoURL: envOrDefault("OPENWEATHER_GEO_URL", "https://api.openweathermap.org/geo/1.0"),

		NominatimURL: envOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:    envOrDefault("USER_AGENT", "ClimaWiki Weather Service"),

		UpstreamTimeout:  upstreamTimeout,
		GeocodeCacheSize: envOrDefaultInt("GEOCODE_CACHE_SIZE", 1000),

		DBPath:          envOrDefault("DB_PATH", "climawiki.db"),
		RefreshInterval: refreshInterval,
	}

	if cfg.UpstreamTimeout <= 0 {
		return nil, errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	if cfg.GeocodeCacheSize <= 0 {
		return nil, errors.New("GEOCODE_CACHE_SIZE must be positive")
	}
	if cfg.DBPath == "" {
		return nil, errors.New("DB_PATH is required")
	}

	return cfg, nil
}

// parseRefreshInterval allows "0" to disable the background refresher.
func parseRefreshInterval() (time.Duration, error) {
	raw := envOrDefault("REFRESH_INTERVAL", "15m")
	if raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid REFRESH_INTERVAL %q", raw)
	}
	return d, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
