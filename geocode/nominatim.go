// Package geocode wraps the Nominatim geocoding service. All lookups are
// best-effort: a nil result means "could not resolve", never a fatal error.
// The adapter does not rate-limit itself; batch callers are responsible for
// sequential, throttled invocation of forward lookups.
package geocode

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mapchat.dev/geo"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "Mapchat/1.0 (mapchat.dev)"
)

// Place is a resolved geocoding result.
type Place struct {
	geo.LatLng
	DisplayName string
}

// Client calls Nominatim's search and reverse endpoints.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient returns a client against the public Nominatim instance. The
// descriptive User-Agent is required by its usage policy.
func NewClient() *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		UserAgent:  defaultUserAgent,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(rawURL string) (*http.Response, error) {
	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	return c.HTTPClient.Do(req)
}

// Geocode resolves an address or place name to a coordinate. Returns nil
// when the service is unreachable, answers non-200 or finds nothing.
func (c *Client) Geocode(query string) *Place {
	u := fmt.Sprintf("%s/search?format=json&q=%s&limit=1&addressdetails=1",
		c.BaseURL, url.QueryEscape(query))

	resp, err := c.get(u)
	if err != nil {
		log.Printf("[geocode] search failed for %q: %v", query, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		log.Printf("[geocode] search returned %d for %q", resp.StatusCode, query)
		return nil
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		log.Printf("[geocode] decode failed for %q: %v", query, err)
		return nil
	}
	if len(results) == 0 {
		log.Printf("[geocode] no results for %q", query)
		return nil
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil || !geo.IsValid(lat, lng) {
		log.Printf("[geocode] bad coordinates in result for %q", query)
		return nil
	}

	return &Place{
		LatLng:      geo.LatLng{Lat: lat, Lng: lng},
		DisplayName: results[0].DisplayName,
	}
}

// Reverse resolves a coordinate to a human-readable address. Returns ""
// when nothing is found.
func (c *Client) Reverse(lat, lng float64) string {
	u := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f&zoom=18&addressdetails=1",
		c.BaseURL, lat, lng)

	resp, err := c.get(u)
	if err != nil {
		log.Printf("[geocode] reverse failed for %.4f,%.4f: %v", lat, lng, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		log.Printf("[geocode] reverse returned %d for %.4f,%.4f", resp.StatusCode, lat, lng)
		return ""
	}

	var result struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("[geocode] reverse decode failed: %v", err)
		return ""
	}
	return result.DisplayName
}
