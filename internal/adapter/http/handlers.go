package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/climawiki/weather-service/internal/domain"
	"github.com/climawiki/weather-service/internal/geocoding"
	"github.com/climawiki/weather-service/internal/i18n"
	"github.com/climawiki/weather-service/internal/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// coordParams are the lat/lon query parameters shared by several endpoints.
type coordParams struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parseCoordParams(r *http.Request) (coordParams, error) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return coordParams{}, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		return coordParams{}, errors.New("lon must be a number")
	}

	params := coordParams{Lat: lat, Lon: lon}
	if err := validate.Struct(params); err != nil {
		return coordParams{}, errors.New("lat must be within [-90, 90] and lon within [-180, 180]")
	}
	return params, nil
}

// weatherLabels carries display strings for the requested language.
type weatherLabels struct {
	Condition  string `json:"condition"`
	Confidence string `json:"confidence"`
}

type weatherResponse struct {
	domain.NormalizedWeather
	Labels weatherLabels `json:"labels"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	params, err := parseCoordParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lang := i18n.Normalize(r.URL.Query().Get("lang"))

	coord := domain.Coordinates{Lat: params.Lat, Lon: params.Lon}
	loc := domain.Location{
		ID:    domain.LocationID(coord),
		Coord: coord,
	}

	weather, err := s.weather.Fetch(r.Context(), loc)
	if err != nil {
		s.logger.Error("weather fetch failed", "lat", params.Lat, "lon", params.Lon, "error", err)
		if domain.IsUpstreamError(err) {
			writeError(w, http.StatusBadGateway, "weather provider unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	confidence := domain.ConfidenceHigh
	if len(weather.Daily) > 0 {
		confidence = weather.Daily[0].Confidence
	}
	writeJSON(w, http.StatusOK, weatherResponse{
		NormalizedWeather: weather,
		Labels: weatherLabels{
			Condition:  i18n.ConditionLabel(lang, weather.Current.Condition),
			Confidence: i18n.ConfidenceLabel(lang, string(confidence)),
		},
	})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	places, err := s.resolver.Resolve(r.Context(), query)
	if err != nil {
		if errors.Is(err, geocoding.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "query must not be empty")
			return
		}
		s.logger.Error("geocode failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": places})
}

func (s *Server) handleReverseGeocode(w http.ResponseWriter, r *http.Request) {
	params, err := parseCoordParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	place, err := s.resolver.ReverseResolve(r.Context(), params.Lat, params.Lon)
	if err != nil {
		s.logger.Error("reverse geocode failed", "lat", params.Lat, "lon", params.Lon, "error", err)
		writeError(w, http.StatusBadGateway, "geocoding provider unavailable")
		return
	}
	if place == nil {
		writeError(w, http.StatusNotFound, "no place found for coordinates")
		return
	}
	writeJSON(w, http.StatusOK, place)
}

type addFavoriteRequest struct {
	Name       string  `json:"name"`
	Country    string  `json:"country"`
	Region     string  `json:"region"`
	Lat        float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon        float64 `json:"lon" validate:"gte=-180,lte=180"`
	CustomName string  `json:"customName"`
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "lat must be within [-90, 90] and lon within [-180, 180]")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}

	loc := domain.Location{
		Name:       req.Name,
		Country:    req.Country,
		Region:     req.Region,
		Coord:      domain.Coordinates{Lat: req.Lat, Lon: req.Lon},
		CustomName: req.CustomName,
	}
	saved, err := s.repo.AddFavorite(r.Context(), loc)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "location is already a favorite")
			return
		}
		s.logger.Error("add favorite failed", "name", req.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.repo.Favorites(r.Context())
	if err != nil {
		s.logger.Error("list favorites failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.repo.RemoveFavorite(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "favorite not found")
			return
		}
		s.logger.Error("remove favorite failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renameFavoriteRequest struct {
	CustomName string `json:"customName"`
}

func (s *Server) handleRenameFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req renameFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.repo.RenameFavorite(r.Context(), id, req.CustomName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "favorite not found")
			return
		}
		s.logger.Error("rename favorite failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderFavoritesRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleReorderFavorites(w http.ResponseWriter, r *http.Request) {
	var req reorderFavoritesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.repo.ReorderFavorites(r.Context(), req.IDs); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "ids must cover every favorite exactly once")
			return
		}
		s.logger.Error("reorder favorites failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFavoriteWeather(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	weather, err := s.snapshots.Latest(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "no refreshed weather for favorite")
		return
	}
	writeJSON(w, http.StatusOK, weather)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.repo.Settings(r.Context())
	if err != nil {
		s.logger.Error("load settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.repo.SaveSettings(r.Context(), settings); err != nil {
		if errors.Is(err, store.ErrInvalidSetting) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("save settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
