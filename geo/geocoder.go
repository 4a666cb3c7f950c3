// Package geo resolves free-text place names to coordinates via the
// Nominatim search API. Lookup failure is never fatal: the caller
// falls back to manual coordinate entry.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/search"

// ErrNotFound means the place name did not resolve to any location.
var ErrNotFound = errors.New("location not found")

// Location is a resolved place.
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
}

// Geocoder turns "city, country" into coordinates.
type Geocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewGeocoder builds a Nominatim client. The API requires an
// identifying User-Agent.
func NewGeocoder(timeout time.Duration) *Geocoder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Geocoder{
		client:    &http.Client{Timeout: timeout},
		baseURL:   defaultBaseURL,
		userAgent: "firewatch/1.0",
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Forward resolves a place query to its best-matching location.
func (g *Geocoder) Forward(ctx context.Context, city, country string) (Location, error) {
	query := city
	if country != "" {
		query = fmt.Sprintf("%s, %s", city, country)
	}
	if strings.TrimSpace(query) == "" {
		return Location{}, ErrNotFound
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Location{}, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Location{}, fmt.Errorf("geocode status %d: %s", resp.StatusCode, body)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Location{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return Location{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("bad longitude %q: %w", results[0].Lon, err)
	}

	return Location{Latitude: lat, Longitude: lon, DisplayName: results[0].DisplayName}, nil
}
