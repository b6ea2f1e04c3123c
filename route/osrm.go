package route

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"mapchat.dev/geo"
)

const defaultOSRMURL = "https://router.project-osrm.org"

// OSRM talks to an OSRM-compatible routing backend.
type OSRM struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewOSRM returns a client against the public OSRM instance.
func NewOSRM() *OSRM {
	return &OSRM{
		BaseURL:    defaultOSRMURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type osrmManeuver struct {
	Type     string `json:"type"`
	Modifier string `json:"modifier"`
	Exit     int    `json:"exit"`
}

type osrmGeometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type osrmStep struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Geometry osrmGeometry `json:"geometry"`
	Name     string       `json:"name"`
	Ref      string       `json:"ref"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmLeg struct {
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Steps    []osrmStep `json:"steps"`
}

type osrmRoute struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Geometry osrmGeometry `json:"geometry"`
	Legs     []osrmLeg    `json:"legs"`
}

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

// profileFor maps a ground travel mode to an OSRM profile. Transit has no
// native profile; its geometry comes from driving and the duration is
// recomputed from the transit speed table afterwards.
func profileFor(mode TravelMode) string {
	if mode == ModeTransit {
		return string(ModeDriving)
	}
	return string(mode)
}

// Route requests a ground route through the ordered points. Points are
// origin, waypoints in order, destination. Returns an error on transport
// failure, a non-Ok code or an empty route set.
func (o *OSRM) Route(mode TravelMode, points []geo.LatLng) (*osrmRoute, error) {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = fmt.Sprintf("%f,%f", p.Lng, p.Lat)
	}

	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson&steps=true",
		o.BaseURL, profileFor(mode), strings.Join(coords, ";"))

	resp, err := o.HTTPClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("routing backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("routing backend returned %d", resp.StatusCode)
	}

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode route response: %w", err)
	}
	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("no route found (code %q)", decoded.Code)
	}

	log.Printf("[route] backend route %.0fm over %d legs", decoded.Routes[0].Distance, len(decoded.Routes[0].Legs))
	return &decoded.Routes[0], nil
}

// latLngs converts OSRM's [lng,lat] coordinate arrays.
func (g osrmGeometry) latLngs() []geo.LatLng {
	out := make([]geo.LatLng, 0, len(g.Coordinates))
	for _, c := range g.Coordinates {
		if len(c) < 2 {
			continue
		}
		out = append(out, geo.LatLng{Lat: c[1], Lng: c[0]})
	}
	return out
}
