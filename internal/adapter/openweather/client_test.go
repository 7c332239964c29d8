package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climawiki/weather-service/internal/domain"
	"github.com/climawiki/weather-service/internal/observability"
)

const testAPIKey = "test-key"

func testClient(srvURL string) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(testAPIKey, srvURL, srvURL+"/geo", 5*time.Second, logger, observability.NewMetricsForTesting())
}

func TestClient_Current_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "51.5074", r.URL.Query().Get("lat"))
		assert.Equal(t, "-0.1278", r.URL.Query().Get("lon"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{
			"weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}],
			"main": {"temp": 14.3, "feels_like": 13.1, "temp_min": 12.0, "temp_max": 16.4, "pressure": 1012, "humidity": 81},
			"wind": {"speed": 3.4, "deg": 210, "gust": 6.1},
			"clouds": {"all": 90},
			"rain": {"1h": 0.5},
			"dt": 1735689600,
			"sys": {"country": "GB"},
			"name": "London"
		}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	obs, err := testClient(srv.URL).Current(context.Background(), domain.Coordinates{Lat: 51.5074, Lon: -0.1278})
	require.NoError(t, err)

	assert.Equal(t, 14.3, obs.Temp)
	assert.Equal(t, 81, obs.Humidity)
	assert.Equal(t, 1012, obs.Pressure)
	assert.Equal(t, 3.4, obs.Wind.Speed)
	assert.Equal(t, 0.5, obs.Rain.OneHour)
	assert.Equal(t, "London", obs.Name)
	assert.Equal(t, "GB", obs.Country)
	require.Len(t, obs.Conditions, 1)
	assert.Equal(t, "Rain", obs.Conditions[0].Main)
	assert.Equal(t, time.Unix(1735689600, 0).UTC(), obs.ObservedAt)
}

func TestClient_Forecast_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{
			"list": [
				{"dt": 1735689600, "main": {"temp": 10.2, "temp_min": 9.1, "temp_max": 11.3, "humidity": 70}, "weather": [{"main": "Clouds", "description": "overcast clouds", "icon": "04d"}], "wind": {"speed": 2.1, "deg": 180}, "pop": 0.35, "rain": {"3h": 0.8}},
				{"dt": 1735700400, "main": {"temp": 11.5, "temp_min": 10.0, "temp_max": 12.0, "humidity": 65}, "weather": [{"main": "Clear", "description": "clear sky", "icon": "01d"}], "wind": {"speed": 1.8, "deg": 190}, "pop": 0}
			]
		}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	entries, err := testClient(srv.URL).Forecast(context.Background(), domain.Coordinates{Lat: 51.5, Lon: -0.1})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, 10.2, entries[0].Temp)
	assert.Equal(t, 0.35, entries[0].Pop)
	assert.Equal(t, 0.8, entries[0].Rain.ThreeHour)
	assert.Equal(t, "Clouds", entries[0].Conditions[0].Main)
	assert.True(t, entries[0].Timestamp.Before(entries[1].Timestamp))
}

func TestClient_DirectGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/direct", r.URL.Path)
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`[
			{"name": "London", "lat": 51.5074, "lon": -0.1278, "country": "GB", "state": "England"},
			{"name": "London", "lat": 42.9834, "lon": -81.233, "country": "CA", "state": "Ontario"}
		]`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	places, err := testClient(srv.URL).DirectGeocode(context.Background(), "London", 5)
	require.NoError(t, err)

	require.Len(t, places, 2)
	assert.Equal(t, "GB", places[0].Country)
	assert.Equal(t, "England", places[0].Region)
}

func TestClient_NonOKStatusBecomesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Current(context.Background(), domain.Coordinates{Lat: 1, Lon: 2})
	require.Error(t, err)

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "weather", upstreamErr.Endpoint)
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.Status)
}

func TestClient_TransportFailureBecomesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // refuse connections

	_, err := testClient(srv.URL).Forecast(context.Background(), domain.Coordinates{Lat: 1, Lon: 2})
	require.Error(t, err)
	assert.True(t, domain.IsUpstreamError(err))
}

func TestClient_MalformedBodyIsNotUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"main": `))
		require.NoError(t, err)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Current(context.Background(), domain.Coordinates{Lat: 1, Lon: 2})
	require.Error(t, err)
	assert.False(t, domain.IsUpstreamError(err))
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL).Current(ctx, domain.Coordinates{Lat: 1, Lon: 2})
	require.Error(t, err)
}
