package domain

import (
	"errors"
	"fmt"
	"time"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that both components are within range.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", c.Lon)
	}
	return nil
}

// Location identifies a place the service looks up weather for. ID is
// stable across lookups (derived from coordinates, see [LocationID]).
type Location struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Country           string      `json:"country,omitempty"`
	Region            string      `json:"region,omitempty"`
	Coord             Coordinates `json:"coord"`
	IsCurrentLocation bool        `json:"isCurrentLocation,omitempty"`
	CustomName        string      `json:"customName,omitempty"`
}

// Condition is one element of the provider's "weather" array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Wind is the provider-shaped wind report, speed in m/s.
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
	Gust  float64 `json:"gust,omitempty"`
}

// Precipitation holds accumulated volume in mm over the trailing windows.
type Precipitation struct {
	OneHour   float64 `json:"1h,omitempty"`
	ThreeHour float64 `json:"3h,omitempty"`
}

// Observation is the provider-shaped current-conditions snapshot. It is
// fetched fresh on every pipeline run and never cached inside the core.
type Observation struct {
	Temp       float64
	FeelsLike  float64
	TempMin    float64
	TempMax    float64
	Humidity   int
	Pressure   int
	Wind       Wind
	Cloudiness int
	Rain       Precipitation
	Snow       Precipitation
	Conditions []Condition
	Name       string // city name reported by the provider
	Country    string
	ObservedAt time.Time
}

// ForecastEntry is one 3-hour-interval prediction from the forecast feed.
type ForecastEntry struct {
	Timestamp  time.Time
	Temp       float64
	TempMin    float64
	TempMax    float64
	Humidity   int
	Wind       Wind
	Conditions []Condition
	Pop        float64 // probability of precipitation, [0,1]
	Rain       Precipitation
	Snow       Precipitation
}

// condition returns the leading weather condition, or a zero value when
// the provider sent an empty array.
func leadCondition(conds []Condition) Condition {
	if len(conds) == 0 {
		return Condition{}
	}
	return conds[0]
}

// WindReport is the display-ready wind shape, speeds in km/h.
type WindReport struct {
	SpeedKmh  int `json:"speedKmh"`
	Direction int `json:"direction"`
	GustKmh   int `json:"gust,omitempty"`
}

// CurrentWeather is the normalized immediate snapshot.
type CurrentWeather struct {
	Temp                int        `json:"temp"`
	FeelsLike           int        `json:"feelsLike"`
	Condition           string     `json:"condition"`
	Description         string     `json:"description"`
	Icon                string     `json:"icon"`
	TempMin             int        `json:"tempMin"`
	TempMax             int        `json:"tempMax"`
	Wind                WindReport `json:"wind"`
	Humidity            int        `json:"humidity"`
	Pressure            int        `json:"pressure"`
	PrecipitationChance int        `json:"precipitationChance"`
	Rainfall            float64    `json:"rainfall"` // expected mm over the next 3h
	RainType            string     `json:"rainType"`
	Snowfall            float64    `json:"snowfall"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// HourlyEntry is one normalized 3-hour step of the next-24h view.
type HourlyEntry struct {
	Time                time.Time `json:"time"`
	Temp                int       `json:"temp"`
	Icon                string    `json:"icon"`
	PrecipitationChance int       `json:"precipitationChance"`
	WindSpeedKmh        int       `json:"windSpeedKmh"`
}

// DailyEntry is one normalized calendar-day row.
type DailyEntry struct {
	Date                time.Time  `json:"date"`
	TempMin             int        `json:"tempMin"`
	TempMax             int        `json:"tempMax"`
	Condition           string     `json:"condition"`
	Icon                string     `json:"icon"`
	PrecipitationChance int        `json:"precipitationChance"`
	Confidence          Confidence `json:"confidence"`
}

// NormalizedWeather is the one contract downstream consumers depend on.
// Daily[0] is "today" (the first calendar day in the forecast sequence)
// and slices like Daily[1:4] are "short-term"; ordering is guaranteed.
type NormalizedWeather struct {
	Location Location       `json:"location"`
	Current  CurrentWeather `json:"current"`
	Hourly   []HourlyEntry  `json:"hourly"`
	Daily    []DailyEntry   `json:"daily"`
}

// UpstreamError reports a transport failure or non-2xx response from a
// weather or geocoding provider. Status is zero for transport failures.
type UpstreamError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstreamError reports whether any error in the chain is an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
