package data

import (
	"fmt"
	"sync"
)

// MapStyle selects the base tile layer.
type MapStyle string

const (
	StyleStandard  MapStyle = "standard"
	StyleTerrain   MapStyle = "terrain"
	StyleSatellite MapStyle = "satellite"
)

// ValidStyle reports whether s is a known map style.
func ValidStyle(s MapStyle) bool {
	return s == StyleStandard || s == StyleTerrain || s == StyleSatellite
}

// StyleFile manages map_style.json.
type StyleFile struct {
	mu   sync.RWMutex
	path string

	Style MapStyle `json:"style"`
}

// Load reads the style, falling back to standard for anything unknown.
func (s *StyleFile) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := loadJSON(s.path, s)
	if !ValidStyle(s.Style) {
		s.Style = StyleStandard
	}
	return err
}

// Save writes the style.
func (s *StyleFile) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return saveJSON(s.path, s)
}

// Get returns the current style.
func (s *StyleFile) Get() MapStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Style
}

// Set changes the style, rejecting unknown values.
func (s *StyleFile) Set(style MapStyle) error {
	if !ValidStyle(style) {
		return fmt.Errorf("unknown map style %q", style)
	}
	s.mu.Lock()
	s.Style = style
	s.mu.Unlock()
	return nil
}
