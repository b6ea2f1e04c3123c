package locations

import (
	"log"
	"math"

	"mapchat.dev/detect"
)

// AreDuplicate reports whether two detected locations refer to the same
// place. The checks run in a fixed order so cheap identity and provenance
// rules settle the question before any coordinate comparison:
//
//  1. identical IDs are always duplicates
//  2. locations from two different known messages are never duplicates
//  3. locations whose text and address both differ are distinct
//  4. a location without coordinates cannot be matched
//  5. otherwise duplicates when both axes fall within CoordTolerance and
//     either the text matches or both carry the same non-empty address
func AreDuplicate(a, b detect.Location) bool {
	if a.ID == b.ID {
		return true
	}

	// Distinct messages can legitimately mention the same place.
	if a.MessageID != "" && b.MessageID != "" && a.MessageID != b.MessageID {
		return false
	}

	if a.Text != b.Text && a.Address != b.Address {
		return false
	}

	if a.Coordinates == nil || b.Coordinates == nil {
		return false
	}

	near := math.Abs(a.Coordinates.Lat-b.Coordinates.Lat) < CoordTolerance &&
		math.Abs(a.Coordinates.Lng-b.Coordinates.Lng) < CoordTolerance
	if !near {
		return false
	}

	sameAddress := a.Address != "" && a.Address == b.Address
	return a.Text == b.Text || sameAddress
}

// Deduplicate removes duplicates from a batch of detections. The first
// occurrence wins; later duplicates are dropped and logged.
func Deduplicate(locs []detect.Location) []detect.Location {
	kept := make([]detect.Location, 0, len(locs))

	for _, loc := range locs {
		dup := false
		for _, k := range kept {
			if AreDuplicate(k, loc) {
				log.Printf("[locations] dropping duplicate %s of %s", loc.ID, k.ID)
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, loc)
		}
	}
	return kept
}

// FilterAgainstPinned drops detections that duplicate an already pinned
// location, so re-scanning a conversation does not resurface saved places.
func FilterAgainstPinned(locs []detect.Location, pinned []Pinned) []detect.Location {
	kept := make([]detect.Location, 0, len(locs))

	for _, loc := range locs {
		dup := false
		for _, p := range pinned {
			if AreDuplicate(p.asDetection(), loc) {
				log.Printf("[locations] %s already pinned as %s", loc.ID, p.ID)
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, loc)
		}
	}
	return kept
}
