// Package route computes multi-modal routes. Ground modes delegate geometry
// and turn instructions to an OSRM backend; plane routes follow great-circle
// interpolation; sea routes follow straight waypoint-chained segments the
// user places to avoid land.
package route

import (
	"mapchat.dev/geo"
)

// TravelMode selects the route family and the speed/cost table row.
type TravelMode string

const (
	ModeDriving       TravelMode = "driving"
	ModeWalking       TravelMode = "walking"
	ModeCycling       TravelMode = "cycling"
	ModeTransit       TravelMode = "transit"
	ModePlane         TravelMode = "plane"
	ModeBoat          TravelMode = "boat"
	ModeContainerShip TravelMode = "container-ship"
)

// Modes lists every supported travel mode.
var Modes = []TravelMode{
	ModeDriving, ModeWalking, ModeCycling, ModeTransit,
	ModePlane, ModeBoat, ModeContainerShip,
}

// Valid reports whether m is a known travel mode.
func (m TravelMode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Ground reports whether the mode routes over the road network.
func (m TravelMode) Ground() bool {
	switch m {
	case ModeDriving, ModeWalking, ModeCycling, ModeTransit:
		return true
	}
	return false
}

// Sea reports whether the mode routes over water.
func (m TravelMode) Sea() bool {
	return m == ModeBoat || m == ModeContainerShip
}

// Label is the display name used in step instructions.
func (m TravelMode) Label() string {
	switch m {
	case ModePlane:
		return "Commercial Plane"
	case ModeContainerShip:
		return "Container Ship"
	case ModeBoat:
		return "Boat"
	}
	return string(m)
}

// Emoji is the marker prefixed to synthetic step instructions.
func (m TravelMode) Emoji() string {
	switch m {
	case ModePlane:
		return "✈️"
	case ModeContainerShip:
		return "🚢"
	case ModeBoat:
		return "⛵"
	}
	return ""
}

// Waypoint is an intermediate stop between origin and destination.
type Waypoint struct {
	geo.LatLng
	ID string `json:"id,omitempty"`
}

// Request describes one route calculation.
type Request struct {
	Origin      geo.LatLng `json:"origin"`
	Destination geo.LatLng `json:"destination"`
	Waypoints   []Waypoint `json:"waypoints,omitempty"`
	Mode        TravelMode `json:"mode"`
}

// Step is one entry of the turn-by-turn breakdown. Segment headers carry
// IsSegmentStart and are presentation rows, not navigation steps; step
// numbering in any rendering skips them.
type Step struct {
	Instruction     string       `json:"instruction"`
	DistanceMeters  float64      `json:"distanceMeters"`
	DurationSeconds float64      `json:"durationSeconds"`
	Coordinates     []geo.LatLng `json:"coordinates,omitempty"`
	SegmentIndex    int          `json:"segmentIndex"`
	IsSegmentStart  bool         `json:"isSegmentStart,omitempty"`
	SegmentLabel    string       `json:"segmentLabel,omitempty"`
}

// Result is a computed route with display-formatted totals alongside the
// raw values they were derived from.
type Result struct {
	Distance        string       `json:"distance"`
	Duration        string       `json:"duration"`
	Cost            string       `json:"cost"`
	Steps           []Step       `json:"steps"`
	Geometry        []geo.LatLng `json:"geometry"`
	DistanceMeters  float64      `json:"distanceMeters"`
	DurationSeconds float64      `json:"durationSeconds"`
}
