// Package store persists saved locations and unit preferences in SQLite
// and keeps the latest refreshed weather snapshots in memory.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"

	_ "modernc.org/sqlite"

	"github.com/climawiki/weather-service/internal/domain"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a favorite within ~1km of an existing
	// one is added.
	ErrDuplicate = errors.New("location already saved")
)

// proximity is the coordinate delta under which two favorites are
// considered the same place.
const proximity = 0.01

const schema = `
CREATE TABLE IF NOT EXISTS favorites (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	country     TEXT NOT NULL DEFAULT '',
	region      TEXT NOT NULL DEFAULT '',
	custom_name TEXT NOT NULL DEFAULT '',
	lat         REAL NOT NULL,
	lon         REAL NOT NULL,
	position    INTEGER NOT NULL,
	added_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store is the SQLite-backed repository for favorites and settings.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable; used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AddFavorite saves a location at the end of the list. The ID is derived
// from the coordinates; adding a place within ~1km of an existing favorite
// returns ErrDuplicate.
func (s *Store) AddFavorite(ctx context.Context, loc domain.Location) (domain.Location, error) {
	if err := loc.Coord.Validate(); err != nil {
		return domain.Location{}, err
	}
	if loc.ID == "" {
		loc.ID = domain.LocationID(loc.Coord)
	}

	existing, err := s.Favorites(ctx)
	if err != nil {
		return domain.Location{}, err
	}
	for _, f := range existing {
		if math.Abs(f.Coord.Lat-loc.Coord.Lat) < proximity && math.Abs(f.Coord.Lon-loc.Coord.Lon) < proximity {
			return domain.Location{}, ErrDuplicate
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO favorites (id, name, country, region, custom_name, lat, lon, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM favorites))`,
		loc.ID, loc.Name, loc.Country, loc.Region, loc.CustomName, loc.Coord.Lat, loc.Coord.Lon,
	)
	if err != nil {
		return domain.Location{}, fmt.Errorf("insert favorite: %w", err)
	}

	s.logger.Info("favorite added", "id", loc.ID, "name", loc.Name)
	return loc, nil
}

// Favorites lists saved locations in list order.
func (s *Store) Favorites(ctx context.Context) ([]domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, country, region, custom_name, lat, lon
		FROM favorites ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]domain.Location, 0)
	for rows.Next() {
		var loc domain.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Country, &loc.Region, &loc.CustomName, &loc.Coord.Lat, &loc.Coord.Lon); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, loc)
	}
	return favorites, rows.Err()
}

// RemoveFavorite deletes a saved location by ID.
func (s *Store) RemoveFavorite(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RenameFavorite sets a custom display name ("Mom's House" style labels).
// An empty name clears the label.
func (s *Store) RenameFavorite(ctx context.Context, id, customName string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE favorites SET custom_name = ? WHERE id = ?`, customName, id)
	if err != nil {
		return fmt.Errorf("rename favorite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderFavorites rewrites list positions to match ids. Every saved
// favorite must appear exactly once.
func (s *Store) ReorderFavorites(ctx context.Context, ids []string) error {
	existing, err := s.Favorites(ctx)
	if err != nil {
		return err
	}
	if len(ids) != len(existing) {
		return fmt.Errorf("reorder requires all %d favorite ids, got %d: %w", len(existing), len(ids), ErrNotFound)
	}
	known := make(map[string]bool, len(existing))
	for _, f := range existing {
		known[f.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("unknown favorite id %q: %w", id, ErrNotFound)
		}
		delete(known, id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE favorites SET position = ? WHERE id = ?`, i+1, id); err != nil {
			return fmt.Errorf("reorder favorite %s: %w", id, err)
		}
	}
	return tx.Commit()
}
