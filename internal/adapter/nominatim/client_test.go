package nominatim

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
)

const testUserAgent = "climawiki-test"

func testClient(srvURL string) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(srvURL, testUserAgent, 5*time.Second, logger)
}

func TestClient_Search_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "Baker Street, London", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`[
			{
				"name": "Baker Street",
				"display_name": "Baker Street, Marylebone, London, England, United Kingdom",
				"lat": "51.5237", "lon": "-0.1585",
				"address": {"country_code": "gb", "state": "England", "city": "London"}
			}
		]`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	places, err := testClient(srv.URL).Search(context.Background(), "Baker Street, London")
	require.NoError(t, err)

	require.Len(t, places, 1)
	assert.Equal(t, "Baker Street", places[0].Name)
	assert.Equal(t, 51.5237, places[0].Lat)
	assert.Equal(t, -0.1585, places[0].Lon)
	assert.Equal(t, "GB", places[0].Country)
	assert.Equal(t, "England", places[0].Region)
}

func TestClient_Search_NormalizesSparseCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`[
			{
				"display_name": "Somewhere Remote, Open Ocean",
				"lat": "0.5", "lon": "0.5",
				"address": {}
			},
			{
				"name": "Pirallahi",
				"display_name": "Pirallahi, Baku, Azerbaijan",
				"lat": "40.47", "lon": "50.33",
				"address": {"country_code": "az", "city": "Baku"}
			}
		]`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	places, err := testClient(srv.URL).Search(context.Background(), "anywhere")
	require.NoError(t, err)

	require.Len(t, places, 2)
	// Missing name falls back to the first display_name segment, missing
	// country code becomes Unknown.
	assert.Equal(t, "Somewhere Remote", places[0].Name)
	assert.Equal(t, "Unknown", places[0].Country)
	assert.Empty(t, places[0].Region)
	// Region prefers state, then city.
	assert.Equal(t, "Baku", places[1].Region)
}

func TestClient_Reverse_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "48.8566", r.URL.Query().Get("lat"))
		assert.Equal(t, "2.3522", r.URL.Query().Get("lon"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{
			"name": "Hôtel de Ville",
			"display_name": "Hôtel de Ville, Paris, Île-de-France, France",
			"lat": "48.8566", "lon": "2.3522",
			"address": {"country_code": "fr", "state": "Île-de-France", "city": "Paris"}
		}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	place, err := testClient(srv.URL).Reverse(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	require.NotNil(t, place)
	// Reverse labels use the settlement, not the addressed feature.
	assert.Equal(t, "Paris", place.Name)
	assert.Equal(t, "FR", place.Country)
	assert.Equal(t, "Île-de-France", place.Region)
}

func TestClient_Reverse_SettlementPriority(t *testing.T) {
	cases := []struct {
		name     string
		address  string
		expected string
	}{
		{"town when no city", `{"country_code": "de", "town": "Haar", "village": "Salmdorf"}`, "Haar"},
		{"village when no town", `{"country_code": "de", "village": "Salmdorf"}`, "Salmdorf"},
		{"municipality as last subdivision", `{"country_code": "de", "municipality": "Landkreis München"}`, "Landkreis München"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, err := w.Write([]byte(`{"lat": "48.1", "lon": "11.7", "address": ` + tc.address + `}`))
				require.NoError(t, err)
			}))
			defer srv.Close()

			place, err := testClient(srv.URL).Reverse(context.Background(), 48.1, 11.7)
			require.NoError(t, err)
			require.NotNil(t, place)
			assert.Equal(t, tc.expected, place.Name)
		})
	}
}

func TestClient_Reverse_FallbackLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"lat": "0.1", "lon": "0.1", "address": {}}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	place, err := testClient(srv.URL).Reverse(context.Background(), 0.1, 0.1)
	require.NoError(t, err)

	require.NotNil(t, place)
	assert.Equal(t, "My Location", place.Name)
	assert.Empty(t, place.Country)
}

func TestClient_Reverse_NoMatchReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"error": "Unable to geocode"}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	place, err := testClient(srv.URL).Reverse(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestClient_ServerErrorBecomesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Search(context.Background(), "London")
	require.Error(t, err)

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "nominatim/search", upstreamErr.Endpoint)
	assert.Equal(t, http.StatusServiceUnavailable, upstreamErr.Status)
}
