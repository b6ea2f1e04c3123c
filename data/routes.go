package data

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/twpayne/go-polyline"

	"mapchat.dev/geo"
	"mapchat.dev/route"
)

// RoutePoint is a route endpoint with an optional resolved address.
type RoutePoint struct {
	geo.LatLng
	Address string `json:"address,omitempty"`
}

// RouteInfo is the display summary carried with a saved route.
type RouteInfo struct {
	Distance string `json:"distance"`
	Duration string `json:"duration"`
	Cost     string `json:"cost,omitempty"`
}

// SavedRoute is a persisted route. Geometry is stored polyline-encoded to
// keep the record file compact; Load decodes it back into coordinates.
type SavedRoute struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Origin         RoutePoint       `json:"origin"`
	Destination    RoutePoint       `json:"destination"`
	Waypoints      []route.Waypoint `json:"waypoints,omitempty"`
	Mode           route.TravelMode `json:"travelMode"`
	Info           RouteInfo        `json:"routeInfo"`
	Color          string           `json:"color,omitempty"`
	ConversationID string           `json:"conversationId,omitempty"`
	SavedAt        int64            `json:"savedAt"`

	Geometry []geo.LatLng `json:"-"`
	Encoded  string       `json:"geometry,omitempty"`
}

// RoutesFile manages saved_routes.json.
type RoutesFile struct {
	mu   sync.RWMutex
	path string

	Routes []SavedRoute `json:"routes"`
}

// Load reads saved routes and decodes their geometry. Routes whose
// geometry fails to decode keep their summary and lose the line.
func (r *RoutesFile) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := loadJSON(r.path, r); err != nil {
		return err
	}
	for i := range r.Routes {
		if r.Routes[i].Encoded == "" {
			continue
		}
		coords, _, err := polyline.DecodeCoords([]byte(r.Routes[i].Encoded))
		if err != nil {
			log.Printf("[data] route %s geometry undecodable: %v", r.Routes[i].ID, err)
			continue
		}
		pts := make([]geo.LatLng, len(coords))
		for j, c := range coords {
			pts[j] = geo.LatLng{Lat: c[0], Lng: c[1]}
		}
		r.Routes[i].Geometry = pts
	}
	return nil
}

// Save encodes geometry and writes the record.
func (r *RoutesFile) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.Routes {
		if len(r.Routes[i].Geometry) == 0 {
			continue
		}
		coords := make([][]float64, len(r.Routes[i].Geometry))
		for j, p := range r.Routes[i].Geometry {
			coords[j] = []float64{p.Lat, p.Lng}
		}
		r.Routes[i].Encoded = string(polyline.EncodeCoords(coords))
	}
	return saveJSON(r.path, r)
}

// Add stores a route and returns its generated id.
func (r *RoutesFile) Add(sr SavedRoute) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sr.ID = "route-" + uuid.NewString()
	sr.SavedAt = time.Now().UnixMilli()
	if sr.Name == "" {
		sr.Name = GenerateRouteName(sr.Mode, sr.Origin.LatLng, sr.Destination.LatLng, len(sr.Waypoints))
	}
	r.Routes = append(r.Routes, sr)
	return sr.ID
}

// Remove deletes a route by id. Reports whether a route was removed.
func (r *RoutesFile) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.Routes {
		if existing.ID == id {
			r.Routes = append(r.Routes[:i], r.Routes[i+1:]...)
			return true
		}
	}
	return false
}

// Rename changes a route's display name.
func (r *RoutesFile) Rename(id, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.Routes {
		if r.Routes[i].ID == id {
			r.Routes[i].Name = name
			return true
		}
	}
	return false
}

// Get returns a route by id.
func (r *RoutesFile) Get(id string) (SavedRoute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, existing := range r.Routes {
		if existing.ID == id {
			return existing, true
		}
	}
	return SavedRoute{}, false
}

// List returns a copy of all saved routes.
func (r *RoutesFile) List() []SavedRoute {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SavedRoute, len(r.Routes))
	copy(out, r.Routes)
	return out
}

// GenerateRouteName builds the default display name for a route.
func GenerateRouteName(mode route.TravelMode, origin, destination geo.LatLng, waypoints int) string {
	label := capitalize(string(mode))
	if waypoints > 0 {
		plural := ""
		if waypoints > 1 {
			plural = "s"
		}
		return fmt.Sprintf("%s route (%d waypoint%s)", label, waypoints, plural)
	}
	return fmt.Sprintf("%s route: %.4f, %.4f → %.4f, %.4f",
		label, origin.Lat, origin.Lng, destination.Lat, destination.Lng)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
