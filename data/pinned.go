package data

import (
	"log"
	"math"
	"strings"
	"sync"

	"mapchat.dev/locations"
)

// PinnedFile manages pinned_locations.json.
type PinnedFile struct {
	mu   sync.RWMutex
	path string

	Locations []locations.Pinned `json:"locations"`
}

// Load reads the pinned set from disk.
func (p *PinnedFile) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return loadJSON(p.path, p)
}

// Save writes the pinned set to disk.
func (p *PinnedFile) Save() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return saveJSON(p.path, p)
}

// Add pins a location. Adding is a no-op when the id is already pinned or
// another pin sits within coordinate tolerance. Reports whether the pin was
// inserted.
func (p *PinnedFile) Add(loc locations.Pinned) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.Locations {
		if existing.ID == loc.ID ||
			(math.Abs(existing.Lat-loc.Lat) < locations.CoordTolerance &&
				math.Abs(existing.Lng-loc.Lng) < locations.CoordTolerance) {
			log.Printf("[data] %s already pinned as %s", loc.ID, existing.ID)
			return false
		}
	}

	if loc.Name == "" {
		loc.Name = loc.Address
	}
	if loc.Name == "" {
		loc.Name = loc.Text
	}

	p.Locations = append(p.Locations, loc)
	return true
}

// Remove unpins by id. Reports whether a pin was removed.
func (p *PinnedFile) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, existing := range p.Locations {
		if existing.ID == id {
			p.Locations = append(p.Locations[:i], p.Locations[i+1:]...)
			return true
		}
	}
	return false
}

// Update applies name/address/text edits to a pin. When a reverse-geocoded
// address arrives for a pin still carrying its placeholder name, the name
// upgrades to the address.
func (p *PinnedFile) Update(id string, name, address, text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.Locations {
		if p.Locations[i].ID != id {
			continue
		}
		if name != "" {
			p.Locations[i].Name = name
		}
		if address != "" {
			p.Locations[i].Address = address
			if strings.HasPrefix(p.Locations[i].Name, "Location at ") {
				p.Locations[i].Name = address
			}
		}
		if text != "" {
			p.Locations[i].Text = text
		}
		return true
	}
	return false
}

// IsPinned reports whether a location is already pinned by id or proximity.
func (p *PinnedFile) IsPinned(id string, lat, lng float64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, existing := range p.Locations {
		if existing.ID == id ||
			(math.Abs(existing.Lat-lat) < locations.CoordTolerance &&
				math.Abs(existing.Lng-lng) < locations.CoordTolerance) {
			return true
		}
	}
	return false
}

// List returns a copy of the pinned set.
func (p *PinnedFile) List() []locations.Pinned {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]locations.Pinned, len(p.Locations))
	copy(out, p.Locations)
	return out
}
