package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mapchat.dev/geo"
	"mapchat.dev/locations"
)

// ExportCSV writes the pinned set as two-column CSV. The coordinate cell
// is "lat,lng"; the name falls back through name, address, original text.
func (s *Store) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"coord", "name"}); err != nil {
		return err
	}

	for _, p := range s.Pinned.List() {
		name := p.Name
		if name == "" {
			name = p.Address
		}
		if name == "" {
			name = p.Text
		}
		coord := fmt.Sprintf("%v,%v", p.Lat, p.Lng)
		if err := cw.Write([]string{coord, name}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ImportCSV reads coord,name rows and pins each valid point. Invalid rows
// are logged and skipped; the count of pins actually inserted is returned.
func (s *Store) ImportCSV(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return 0, err
	}

	imported := 0
	for i, row := range rows {
		if len(row) < 1 {
			continue
		}
		if i == 0 && strings.Contains(strings.ToLower(row[0]), "coord") {
			continue
		}

		lat, lng, err := parseCoordCell(row[0])
		if err != nil {
			log.Printf("[data] csv row %d skipped: %v", i+1, err)
			continue
		}
		if !geo.IsValid(lat, lng) {
			log.Printf("[data] csv row %d out of range: %v, %v", i+1, lat, lng)
			continue
		}

		name := ""
		if len(row) > 1 {
			name = strings.TrimSpace(row[1])
		}
		if name == "" {
			name = fmt.Sprintf("Point %d", i)
		}

		if s.Pinned.Add(locations.Pinned{
			ID:       "csv-import-" + uuid.NewString(),
			Lat:      lat,
			Lng:      lng,
			Text:     name,
			Name:     name,
			PinnedAt: time.Now().UnixMilli(),
		}) {
			imported++
		}
	}

	if imported == 0 {
		return 0, fmt.Errorf("no valid points found")
	}
	return imported, nil
}

func parseCoordCell(cell string) (float64, float64, error) {
	parts := strings.SplitN(cell, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("coordinate cell %q is not lat,lng", cell)
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return 0, 0, fmt.Errorf("coordinate cell %q is not numeric", cell)
	}
	return lat, lng, nil
}
