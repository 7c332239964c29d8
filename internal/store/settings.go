package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidSetting is wrapped by Validate failures so callers can map
// them to a client error.
var ErrInvalidSetting = errors.New("invalid setting")

// Settings are the user-facing unit and theme preferences. They belong to
// the presentation layer; the weather pipeline never consults them.
type Settings struct {
	TemperatureUnit string `json:"temperatureUnit"`
	WindSpeedUnit   string `json:"windSpeedUnit"`
	PressureUnit    string `json:"pressureUnit"`
	Theme           string `json:"theme"`
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		TemperatureUnit: "celsius",
		WindSpeedUnit:   "kmh",
		PressureUnit:    "hpa",
		Theme:           "dark",
	}
}

var allowedSettings = map[string]map[string]bool{
	"temperature_unit": {"celsius": true, "fahrenheit": true},
	"wind_unit":        {"kmh": true, "mph": true, "ms": true},
	"pressure_unit":    {"hpa": true, "inhg": true, "mmhg": true},
	"theme":            {"dark": true, "light": true, "auto": true},
}

// Validate checks every field against its allowed values.
func (s Settings) Validate() error {
	checks := []struct {
		key   string
		value string
	}{
		{"temperature_unit", s.TemperatureUnit},
		{"wind_unit", s.WindSpeedUnit},
		{"pressure_unit", s.PressureUnit},
		{"theme", s.Theme},
	}
	for _, c := range checks {
		if !allowedSettings[c.key][c.value] {
			return fmt.Errorf("%w: %s %q", ErrInvalidSetting, c.key, c.value)
		}
	}
	return nil
}

// Settings returns the stored preferences, with defaults filling any key
// never written.
func (s *Store) Settings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("scan setting: %w", err)
		}
		switch key {
		case "temperature_unit":
			settings.TemperatureUnit = value
		case "wind_unit":
			settings.WindSpeedUnit = value
		case "pressure_unit":
			settings.PressureUnit = value
		case "theme":
			settings.Theme = value
		}
	}
	return settings, rows.Err()
}

// SaveSettings validates and upserts all preferences.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings update: %w", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		"temperature_unit": settings.TemperatureUnit,
		"wind_unit":        settings.WindSpeedUnit,
		"pressure_unit":    settings.PressureUnit,
		"theme":            settings.Theme,
	}
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return fmt.Errorf("save setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}
