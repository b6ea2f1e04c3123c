// Package locations holds the models and rules shared by the detection
// pipeline: deduplication of detected locations and promotion to pinned
// locations that outlive the conversation they were seen in.
package locations

import (
	"fmt"
	"time"

	"mapchat.dev/detect"
	"mapchat.dev/geo"
)

// CoordTolerance is the coordinate-proximity window, per axis in degrees,
// under which two locations can be the same place (~11m).
const CoordTolerance = 1e-4

// Pinned is a location promoted from ephemeral conversation-detected status
// to persisted storage.
type Pinned struct {
	ID             string  `json:"id"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Text           string  `json:"text"`
	Address        string  `json:"address,omitempty"`
	Name           string  `json:"name,omitempty"`
	ConversationID string  `json:"conversationId,omitempty"`
	PinnedAt       int64   `json:"pinnedAt"`
}

// Promote turns a resolved detection into a pinned location. The detection
// must carry coordinates.
func Promote(d detect.Location, conversationID string) (Pinned, error) {
	if d.Coordinates == nil {
		return Pinned{}, fmt.Errorf("location %s has no coordinates", d.ID)
	}

	address := d.FormattedAddress
	if address == "" {
		address = d.Address
	}

	name := address
	if name == "" {
		name = d.Text
	}

	return Pinned{
		ID:             d.ID,
		Lat:            d.Coordinates.Lat,
		Lng:            d.Coordinates.Lng,
		Text:           d.Text,
		Address:        address,
		Name:           name,
		ConversationID: conversationID,
		PinnedAt:       time.Now().UnixMilli(),
	}, nil
}

// asDetection adapts a pinned location for the duplicate predicate.
func (p Pinned) asDetection() detect.Location {
	return detect.Location{
		ID:          p.ID,
		Text:        p.Text,
		Address:     p.Address,
		Coordinates: &geo.LatLng{Lat: p.Lat, Lng: p.Lng},
	}
}
