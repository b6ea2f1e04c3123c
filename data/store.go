// Package data persists mapchat state. Each record is an independent JSON
// file with explicit Load/Save methods. Loads tolerate missing files;
// corrupt records are logged and treated as empty rather than crashing the
// caller.
package data

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Store owns the record files under one data directory.
type Store struct {
	dir string

	Pinned   *PinnedFile
	Routes   *RoutesFile
	Settings *SettingsFile
	Style    *StyleFile
}

// Open creates the data directory if needed and loads every record.
// Individual load failures are logged, not returned; a fresh directory
// simply starts empty.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &Store{
		dir:      dir,
		Pinned:   &PinnedFile{path: filepath.Join(dir, "pinned_locations.json")},
		Routes:   &RoutesFile{path: filepath.Join(dir, "saved_routes.json")},
		Settings: &SettingsFile{path: filepath.Join(dir, "route_settings.json")},
		Style:    &StyleFile{path: filepath.Join(dir, "map_style.json")},
	}

	for name, loader := range map[string]func() error{
		"pinned":   s.Pinned.Load,
		"routes":   s.Routes.Load,
		"settings": s.Settings.Load,
		"style":    s.Style.Load,
	} {
		if err := loader(); err != nil {
			log.Printf("[data] load %s: %v", name, err)
		}
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// SaveAll writes every record. The first error is returned after all
// records have been attempted.
func (s *Store) SaveAll() error {
	var first error
	for name, saver := range map[string]func() error{
		"pinned":   s.Pinned.Save,
		"routes":   s.Routes.Save,
		"settings": s.Settings.Save,
		"style":    s.Style.Save,
	} {
		if err := saver(); err != nil {
			log.Printf("[data] save %s: %v", name, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// StartBackgroundSave persists all records on a fixed interval.
func (s *Store) StartBackgroundSave(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := s.SaveAll(); err != nil {
				log.Printf("[data] background save: %v", err)
			}
		}
	}()
	log.Printf("[data] background save started (every %v)", interval)
}

func loadJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func saveJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
