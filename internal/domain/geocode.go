package domain

import "context"

// Place is one geocoding candidate. The JSON shape mirrors the OWM direct
// geocoding response so fallback results can be used verbatim.
type Place struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	Region  string  `json:"state,omitempty"`
}

// Coord returns the place's coordinate pair.
func (p Place) Coord() Coordinates {
	return Coordinates{Lat: p.Lat, Lon: p.Lon}
}

// Location converts a geocoding candidate into a trackable location.
func (p Place) Location() Location {
	coord := p.Coord()
	return Location{
		ID:      LocationID(coord),
		Name:    p.Name,
		Country: p.Country,
		Region:  p.Region,
		Coord:   coord,
	}
}

// PlaceResolver turns free-text queries and coordinates into places.
//
// Resolve degrades softly: when every provider fails it returns an empty
// slice and a nil error so callers stay non-blocking. ReverseResolve
// propagates provider errors and returns nil (with nil error) on no match.
type PlaceResolver interface {
	Resolve(ctx context.Context, query string) ([]Place, error)
	ReverseResolve(ctx context.Context, lat, lon float64) (*Place, error)
}
