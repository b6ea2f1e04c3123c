// Package geo provides coordinate validation and the spherical math used by
// the route engine: haversine distances, great-circle interpolation for air
// paths and linear interpolation for sea paths.
package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusKm is the mean Earth radius.
	EarthRadiusKm = 6371.0

	// DefaultSeaSegmentKm controls how often an intermediate point is added
	// on a sea leg. One extra point per ~500km stands in for land-avoidance;
	// users place waypoints manually to steer around coastlines.
	DefaultSeaSegmentKm = 500.0
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p LatLng) String() string {
	return fmt.Sprintf("%.4f, %.4f", p.Lat, p.Lng)
}

// Valid reports whether the point is within coordinate ranges.
func (p LatLng) Valid() bool {
	return IsValid(p.Lat, p.Lng)
}

// IsValid reports whether lat is in [-90,90] and lng in [-180,180].
// NaN fails both range checks.
func IsValid(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(a, b LatLng) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// GreatCircle interpolates points along the great circle from a to b using
// spherical linear interpolation. segments is the number of arcs; the result
// has segments+1 points and always includes both endpoints.
func GreatCircle(a, b LatLng, segments int) []LatLng {
	if segments < 1 {
		return []LatLng{a, b}
	}

	lat1 := a.Lat * math.Pi / 180
	lng1 := a.Lng * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lng2 := b.Lng * math.Pi / 180

	// Angular distance between the endpoints.
	d := math.Acos(clamp(math.Sin(lat1)*math.Sin(lat2)+
		math.Cos(lat1)*math.Cos(lat2)*math.Cos(lng2-lng1), -1, 1))

	// Degenerate arc: the slerp denominator vanishes.
	if math.Sin(d) == 0 {
		return []LatLng{a, b}
	}

	points := make([]LatLng, 0, segments+1)
	points = append(points, a)

	for i := 1; i < segments; i++ {
		f := float64(i) / float64(segments)
		fa := math.Sin((1-f)*d) / math.Sin(d)
		fb := math.Sin(f*d) / math.Sin(d)

		x := fa*math.Cos(lat1)*math.Cos(lng1) + fb*math.Cos(lat2)*math.Cos(lng2)
		y := fa*math.Cos(lat1)*math.Sin(lng1) + fb*math.Cos(lat2)*math.Sin(lng2)
		z := fa*math.Sin(lat1) + fb*math.Sin(lat2)

		points = append(points, LatLng{
			Lat: math.Atan2(z, math.Sqrt(x*x+y*y)) * 180 / math.Pi,
			Lng: math.Atan2(y, x) * 180 / math.Pi,
		})
	}

	points = append(points, b)
	return points
}

// SeaLine interpolates a sea leg from a to b with straight lat/lng steps.
// Point density scales with distance: one intermediate point per segmentKm.
func SeaLine(a, b LatLng, segmentKm float64) []LatLng {
	if segmentKm <= 0 {
		segmentKm = DefaultSeaSegmentKm
	}

	dist := Haversine(a, b)
	intermediates := int(dist/segmentKm) - 1
	if intermediates < 0 {
		intermediates = 0
	}

	points := make([]LatLng, 0, intermediates+2)
	points = append(points, a)
	for j := 1; j <= intermediates; j++ {
		f := float64(j) / float64(intermediates+1)
		points = append(points, LatLng{
			Lat: a.Lat + (b.Lat-a.Lat)*f,
			Lng: a.Lng + (b.Lng-a.Lng)*f,
		})
	}
	points = append(points, b)
	return points
}

// PathLengthKm sums haversine distances between consecutive points. Summing
// the interpolated points, rather than taking the single-shot distance,
// keeps chained waypoint paths honest about their actual length.
func PathLengthKm(points []LatLng) float64 {
	var total float64
	for i := 0; i < len(points)-1; i++ {
		total += Haversine(points[i], points[i+1])
	}
	return total
}

// ChainLegs concatenates per-leg point lists, dropping each leg's duplicated
// first point so junction points appear exactly once.
func ChainLegs(legs ...[]LatLng) []LatLng {
	var path []LatLng
	for _, leg := range legs {
		if len(leg) == 0 {
			continue
		}
		if len(path) == 0 {
			path = append(path, leg...)
			continue
		}
		path = append(path, leg[1:]...)
	}
	return path
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
