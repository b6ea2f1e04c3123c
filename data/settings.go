package data

import (
	"sync"

	"mapchat.dev/route"
)

// SettingsFile manages route_settings.json: the user-editable speed and
// cost tables.
type SettingsFile struct {
	mu   sync.RWMutex
	path string

	settings route.Settings
}

// Load reads the tables and merges them over the defaults so records
// written before a mode existed still cover every mode.
func (s *SettingsFile) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored route.Settings
	if err := loadJSON(s.path, &stored); err != nil {
		s.settings = route.DefaultSettings()
		return err
	}
	s.settings = stored.Merge()
	return nil
}

// Save writes the tables.
func (s *SettingsFile) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return saveJSON(s.path, s.settings)
}

// Snapshot returns a copy of the current tables. The route engine takes a
// snapshot at the start of each calculation.
func (s *SettingsFile) Snapshot() route.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := route.Settings{
		Speeds: make(map[route.TravelMode]float64, len(s.settings.Speeds)),
		Costs:  make(map[route.TravelMode]float64, len(s.settings.Costs)),
	}
	for k, v := range s.settings.Speeds {
		out.Speeds[k] = v
	}
	for k, v := range s.settings.Costs {
		out.Costs[k] = v
	}
	return out
}

// Set replaces the tables, merging the update over the defaults. Last
// write wins.
func (s *SettingsFile) Set(settings route.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings.Merge()
}

// Reset restores both tables to their defaults.
func (s *SettingsFile) Reset() route.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = route.DefaultSettings()
	return s.settings
}
