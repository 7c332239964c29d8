package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climawiki/weather-service/internal/domain"
	"github.com/climawiki/weather-service/internal/observability"
	"github.com/climawiki/weather-service/internal/pipeline"
)

// --- mocks ---

type mockCurrent struct {
	obs   domain.Observation
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (m *mockCurrent) Current(ctx context.Context, _ domain.Coordinates) (domain.Observation, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return domain.Observation{}, ctx.Err()
		}
	}
	return m.obs, m.err
}

type mockForecast struct {
	entries []domain.ForecastEntry
	err     error
	delay   time.Duration
	calls   atomic.Int64
}

func (m *mockForecast) Forecast(ctx context.Context, _ domain.Coordinates) ([]domain.ForecastEntry, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.entries, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var baseDay = time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)

func testForecast(n int) []domain.ForecastEntry {
	entries := make([]domain.ForecastEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, domain.ForecastEntry{
			Timestamp:  baseDay.Add(time.Duration(i) * 3 * time.Hour),
			Temp:       18 + float64(i%8),
			Pop:        0.25,
			Wind:       domain.Wind{Speed: 4, Deg: 90},
			Conditions: []domain.Condition{{Main: "Clouds", Description: "broken clouds", Icon: "04d"}},
		})
	}
	return entries
}

func testObservation() domain.Observation {
	return domain.Observation{
		Temp:       20.3,
		FeelsLike:  19.1,
		TempMin:    17,
		TempMax:    24,
		Humidity:   70,
		Pressure:   1015,
		Wind:       domain.Wind{Speed: 4.2, Deg: 135},
		Conditions: []domain.Condition{{Main: "Clear", Description: "clear sky", Icon: "01d"}},
		Name:       "Valencia",
		Country:    "ES",
	}
}

func testLocation() domain.Location {
	return domain.Location{
		ID:    "loc-test",
		Name:  "Valencia",
		Coord: domain.Coordinates{Lat: 39.47, Lon: -0.38},
	}
}

// --- tests ---

func TestService_Fetch_HappyPath(t *testing.T) {
	fake := clockwork.NewFakeClockAt(baseDay.Add(6 * time.Hour))
	domain.SetClock(fake)
	defer domain.SetClock(nil)

	cur := &mockCurrent{obs: testObservation()}
	fc := &mockForecast{entries: testForecast(40)}

	svc := pipeline.New(cur, fc, discardLogger(), observability.NewMetricsForTesting())

	result, err := svc.Fetch(context.Background(), testLocation())
	require.NoError(t, err)

	assert.Equal(t, int64(1), cur.calls.Load())
	assert.Equal(t, int64(1), fc.calls.Load())

	assert.Equal(t, "loc-test", result.Location.ID)
	assert.Equal(t, 20, result.Current.Temp)
	assert.Equal(t, 25, result.Current.PrecipitationChance)
	assert.Equal(t, fake.Now().UTC(), result.Current.UpdatedAt)
	assert.Len(t, result.Hourly, 8)
	assert.Len(t, result.Daily, 5) // 40 entries at 3h spacing span 5 days

	for _, day := range result.Daily {
		assert.LessOrEqual(t, day.TempMin, day.TempMax)
	}
}

func TestService_Fetch_FailFastOnCurrentError(t *testing.T) {
	upstreamErr := &domain.UpstreamError{Endpoint: "weather", Status: 503}
	cur := &mockCurrent{err: upstreamErr}
	fc := &mockForecast{entries: testForecast(8), delay: 200 * time.Millisecond}

	svc := pipeline.New(cur, fc, discardLogger(), observability.NewMetricsForTesting())

	start := time.Now()
	_, err := svc.Fetch(context.Background(), testLocation())

	require.Error(t, err)
	assert.ErrorIs(t, err, upstreamErr)
	assert.True(t, domain.IsUpstreamError(err))
	// The combined result rejects with the current-conditions error without
	// waiting out the slower forecast fetch.
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestService_Fetch_FailsOnForecastError(t *testing.T) {
	upstreamErr := &domain.UpstreamError{Endpoint: "forecast", Status: 500}
	cur := &mockCurrent{obs: testObservation()}
	fc := &mockForecast{err: upstreamErr}

	svc := pipeline.New(cur, fc, discardLogger(), observability.NewMetricsForTesting())

	_, err := svc.Fetch(context.Background(), testLocation())

	require.Error(t, err)
	assert.ErrorIs(t, err, upstreamErr)
}

func TestService_Fetch_NoPartialResult(t *testing.T) {
	cur := &mockCurrent{obs: testObservation()}
	fc := &mockForecast{err: errors.New("connection reset")}

	svc := pipeline.New(cur, fc, discardLogger(), observability.NewMetricsForTesting())

	result, err := svc.Fetch(context.Background(), testLocation())

	require.Error(t, err)
	assert.Equal(t, domain.NormalizedWeather{}, result)
}

func TestService_Fetch_ContextCancellation(t *testing.T) {
	cur := &mockCurrent{obs: testObservation(), delay: time.Second}
	fc := &mockForecast{entries: testForecast(8), delay: time.Second}

	svc := pipeline.New(cur, fc, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Fetch(ctx, testLocation())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
