// Package openweather implements the weather fetchers and the fallback
// geocoder against the OpenWeatherMap API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/climawiki/weather-service/internal/domain"
	"github.com/climawiki/weather-service/internal/observability"
)

const (
	endpointCurrent  = "weather"
	endpointForecast = "forecast"
	endpointGeocode  = "geo/direct"
)

// Client calls the OpenWeatherMap current-weather, 5-day forecast, and
// direct geocoding endpoints. It performs no retries; upstream failures
// surface to the caller as *domain.UpstreamError.
type Client struct {
	apiKey     string
	baseURL    string // /data/2.5
	geoURL     string // /geo/1.0
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an OpenWeatherMap client. An empty API key is allowed;
// calls will fail upstream with an auth error.
func NewClient(apiKey, baseURL, geoURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		geoURL:     geoURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Current fetches the current-conditions snapshot for a coordinate pair.
func (c *Client) Current(ctx context.Context, coord domain.Coordinates) (domain.Observation, error) {
	var payload currentPayload
	if err := c.get(ctx, endpointCurrent, c.weatherURL(endpointCurrent, coord), &payload); err != nil {
		return domain.Observation{}, err
	}
	return payload.toObservation(), nil
}

// Forecast fetches the ordered 3-hourly forecast sequence for a coordinate pair.
func (c *Client) Forecast(ctx context.Context, coord domain.Coordinates) ([]domain.ForecastEntry, error) {
	var payload forecastPayload
	if err := c.get(ctx, endpointForecast, c.weatherURL(endpointForecast, coord), &payload); err != nil {
		return nil, err
	}

	entries := make([]domain.ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		entries = append(entries, item.toEntry())
	}
	return entries, nil
}

// DirectGeocode resolves a free-text query to city-level candidates. The
// response shape already matches domain.Place, so results are used verbatim.
func (c *Client) DirectGeocode(ctx context.Context, query string, limit int) ([]domain.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("appid", c.apiKey)

	var places []domain.Place
	fullURL := fmt.Sprintf("%s/direct?%s", c.geoURL, params.Encode())
	if err := c.get(ctx, endpointGeocode, fullURL, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (c *Client) weatherURL(endpoint string, coord domain.Coordinates) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	return fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
}

// get performs one GET and decodes the JSON body into out. Non-2xx
// responses and transport failures become *domain.UpstreamError; decode
// failures propagate wrapped.
func (c *Client) get(ctx context.Context, endpoint, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
		return &domain.UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
		c.logger.Warn("openweather request failed", "endpoint", endpoint, "status", resp.StatusCode)
		return &domain.UpstreamError{Endpoint: endpoint, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "decode_error").Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.metrics.ProviderRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}

// OpenWeatherMap API response types.

type currentPayload struct {
	Weather []domain.Condition `json:"weather"`
	Main    mainPayload        `json:"main"`
	Wind    domain.Wind        `json:"wind"`
	Clouds  struct {
		All int `json:"all"`
	} `json:"clouds"`
	Rain domain.Precipitation `json:"rain"`
	Snow domain.Precipitation `json:"snow"`
	Dt   int64                `json:"dt"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name string `json:"name"`
}

type mainPayload struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

func (p currentPayload) toObservation() domain.Observation {
	return domain.Observation{
		Temp:       p.Main.Temp,
		FeelsLike:  p.Main.FeelsLike,
		TempMin:    p.Main.TempMin,
		TempMax:    p.Main.TempMax,
		Humidity:   p.Main.Humidity,
		Pressure:   p.Main.Pressure,
		Wind:       p.Wind,
		Cloudiness: p.Clouds.All,
		Rain:       p.Rain,
		Snow:       p.Snow,
		Conditions: p.Weather,
		Name:       p.Name,
		Country:    p.Sys.Country,
		ObservedAt: domain.EpochSecondsToTime(p.Dt),
	}
}

type forecastPayload struct {
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	Dt      int64                `json:"dt"`
	Main    mainPayload          `json:"main"`
	Weather []domain.Condition   `json:"weather"`
	Wind    domain.Wind          `json:"wind"`
	Pop     float64              `json:"pop"`
	Rain    domain.Precipitation `json:"rain"`
	Snow    domain.Precipitation `json:"snow"`
}

func (i forecastItem) toEntry() domain.ForecastEntry {
	return domain.ForecastEntry{
		Timestamp:  domain.EpochSecondsToTime(i.Dt),
		Temp:       i.Main.Temp,
		TempMin:    i.Main.TempMin,
		TempMax:    i.Main.TempMax,
		Humidity:   i.Main.Humidity,
		Wind:       i.Wind,
		Conditions: i.Weather,
		Pop:        i.Pop,
		Rain:       i.Rain,
		Snow:       i.Snow,
	}
}
