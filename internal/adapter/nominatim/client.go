// Package nominatim implements the primary geocoder against the
// OpenStreetMap Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/climawiki/weather-service/internal/domain"
)

const resultLimit = 5

// Client calls the Nominatim search and reverse endpoints. Nominatim's
// terms of service require an identifying User-Agent on every request.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Nominatim geocoding client.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Search resolves free text (city, street, full address) to up to five
// ranked place candidates.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(resultLimit))
	params.Set("addressdetails", "1")

	var payload []place
	if err := c.get(ctx, "search", fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode()), &payload); err != nil {
		return nil, err
	}

	results := make([]domain.Place, 0, len(payload))
	for _, p := range payload {
		results = append(results, p.toPlace())
	}
	return results, nil
}

// Reverse resolves coordinates to the best-matching place, or nil when
// Nominatim has no match for the position.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*domain.Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var payload place
	if err := c.get(ctx, "reverse", fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode()), &payload); err != nil {
		return nil, err
	}

	// Nominatim reports no-match as an error body rather than a 404.
	if payload.Err != "" || payload.Lat == "" {
		return nil, nil
	}

	result := payload.toPlace()
	result.Name = payload.settlementName()
	if payload.Address.CountryCode == "" {
		result.Country = ""
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, endpoint, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Endpoint: "nominatim/" + endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("nominatim request failed", "endpoint", endpoint, "status", resp.StatusCode)
		return &domain.UpstreamError{Endpoint: "nominatim/" + endpoint, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode nominatim %s response: %w", endpoint, err)
	}
	return nil
}

// Nominatim API response types. Coordinates arrive as strings.

type place struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     address `json:"address"`
	Err         string  `json:"error"`
}

type address struct {
	CountryCode  string `json:"country_code"`
	State        string `json:"state"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
}

// toPlace normalizes a raw candidate: short display name, uppercased
// country code, and the most specific available subdivision as region.
func (p place) toPlace() domain.Place {
	name := p.Name
	if name == "" {
		name = strings.TrimSpace(strings.SplitN(p.DisplayName, ",", 2)[0])
	}

	country := "Unknown"
	if p.Address.CountryCode != "" {
		country = strings.ToUpper(p.Address.CountryCode)
	}

	region := firstNonEmpty(p.Address.State, p.Address.City, p.Address.Town)

	return domain.Place{
		Name:    name,
		Lat:     parseCoord(p.Lat),
		Lon:     parseCoord(p.Lon),
		Country: country,
		Region:  region,
	}
}

// settlementName prefers city > town > village > municipality, then the
// top-level name, for labelling a reverse-geocoded position.
func (p place) settlementName() string {
	if name := firstNonEmpty(p.Address.City, p.Address.Town, p.Address.Village, p.Address.Municipality, p.Name); name != "" {
		return name
	}
	return "My Location"
}

func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
