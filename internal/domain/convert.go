package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// MetersPerSecondToKmh converts a wind speed to km/h, rounded to the
// nearest integer.
func MetersPerSecondToKmh(ms float64) int {
	return int(math.Round(ms * 3.6))
}

// EpochSecondsToTime converts Unix epoch seconds to a UTC time.
func EpochSecondsToTime(unix int64) time.Time {
	return time.Unix(unix, 0).UTC()
}

// RoundPercent converts a [0,1] probability to a rounded whole percentage.
func RoundPercent(p float64) int {
	return int(math.Round(p * 100))
}

// roundTemp rounds a temperature to the nearest whole degree.
func roundTemp(t float64) int {
	return int(math.Round(t))
}

// roundToTenth rounds a millimeter volume to one decimal place.
func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// LocationID derives a stable identifier from a coordinate pair.
// Deterministic IDs keep bookmarks and lookups for the same place
// convergent across sessions.
func LocationID(coord Coordinates) string {
	input := fmt.Sprintf("%.4f|%.4f", coord.Lat, coord.Lon)
	hash := sha256.Sum256([]byte(input))
	return "loc-" + hex.EncodeToString(hash[:8])
}

// iconConditions maps OWM icon codes to display condition names.
var iconConditions = map[string]string{
	"01d": "Clear Sky",
	"01n": "Clear Night",
	"02d": "Partly Cloudy",
	"02n": "Partly Cloudy",
	"03d": "Cloudy",
	"03n": "Cloudy",
	"04d": "Overcast",
	"04n": "Overcast",
	"09d": "Light Rain",
	"09n": "Light Rain",
	"10d": "Rain",
	"10n": "Rain",
	"11d": "Thunderstorm",
	"11n": "Thunderstorm",
	"13d": "Snow",
	"13n": "Snow",
	"50d": "Mist",
	"50n": "Mist",
}

// ConditionForIcon maps an OWM icon code to a display condition name.
func ConditionForIcon(icon string) string {
	if name, ok := iconConditions[icon]; ok {
		return name
	}
	return "Unknown"
}
