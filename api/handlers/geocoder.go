package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// Geocoder resolves coordinates to a display address. Lookups are
// best-effort: a failure leaves the report's address empty and is never
// surfaced to the submitting citizen.
type Geocoder interface {
	ReverseGeocode(lat, lng float64) (string, error)
}

// NominatimGeocoder calls a nominatim-compatible reverse geocoding endpoint
type NominatimGeocoder struct {
	BaseURL string
	Client  *http.Client
}

// NewNominatimGeocoder builds a geocoder from the NOMINATIM_BASE_URL env var
func NewNominatimGeocoder() *NominatimGeocoder {
	baseURL := os.Getenv("NOMINATIM_BASE_URL")
	if baseURL == "" {
		baseURL = defaultNominatimBaseURL
	}
	return &NominatimGeocoder{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// ReverseGeocode returns the display address for the given coordinates
func (g *NominatimGeocoder) ReverseGeocode(lat, lng float64) (string, error) {
	url := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f", g.BaseURL, lat, lng)
	resp, err := g.Client.Get(url)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status %d", resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	return body.DisplayName, nil
}
