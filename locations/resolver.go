package locations

import (
	"log"
	"sync"
	"time"

	"mapchat.dev/detect"
	"mapchat.dev/geocode"
)

// forwardThrottle spaces sequential forward-geocoding requests to stay
// inside Nominatim's one-request-per-second policy.
const forwardThrottle = 1100 * time.Millisecond

// Message is one conversation text unit to scan.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Resolver runs the full scan pipeline: detect, deduplicate, resolve
// addresses and bare links to coordinates, then backfill formatted
// addresses by reverse geocoding.
type Resolver struct {
	Detector *detect.Detector
	Geo      *geocode.Client
	Throttle time.Duration
	Sleep    func(time.Duration)
}

// NewResolver wires a resolver with the default throttle.
func NewResolver(d *detect.Detector, g *geocode.Client) *Resolver {
	return &Resolver{
		Detector: d,
		Geo:      g,
		Throttle: forwardThrottle,
		Sleep:    time.Sleep,
	}
}

// Scan detects locations across a batch of messages and resolves them.
// Forward geocoding runs sequentially with a throttle delay between
// requests; reverse geocoding fans out concurrently since each lookup hits
// a distinct coordinate. Detections that cannot be resolved to coordinates
// are dropped.
func (r *Resolver) Scan(messages []Message) []detect.Location {
	var all []detect.Location
	for _, m := range messages {
		found := r.Detector.Detect(m.Text, detect.Source{
			MessageID: m.ID,
			Timestamp: m.Timestamp,
			Author:    m.Author,
		})
		all = append(all, found...)
	}

	all = Deduplicate(all)
	resolved := r.resolveForward(all)

	var wg sync.WaitGroup
	for i := range resolved {
		if resolved[i].FormattedAddress != "" {
			continue
		}
		wg.Add(1)
		go func(loc *detect.Location) {
			defer wg.Done()
			if addr := r.Geo.Reverse(loc.Coordinates.Lat, loc.Coordinates.Lng); addr != "" {
				loc.FormattedAddress = addr
			}
		}(&resolved[i])
	}
	wg.Wait()

	// Resolution can collapse distinct-looking detections onto the same
	// coordinate, so deduplicate once more.
	return Deduplicate(resolved)
}

// resolveForward fills in coordinates for addresses and unresolved links,
// one throttled request at a time.
func (r *Resolver) resolveForward(locs []detect.Location) []detect.Location {
	out := make([]detect.Location, 0, len(locs))
	requested := false

	for _, loc := range locs {
		if loc.Coordinates != nil {
			out = append(out, loc)
			continue
		}

		if requested {
			r.Sleep(r.Throttle)
		}
		requested = true

		var place *geocode.Place
		switch loc.Kind {
		case detect.KindMapsLink:
			place = r.Geo.ResolveShortLink(loc.Text)
		default:
			place = r.Geo.Geocode(loc.Address)
		}

		if place == nil {
			log.Printf("[locations] could not resolve %s (%q)", loc.ID, loc.Text)
			continue
		}

		coords := place.LatLng
		loc.Coordinates = &coords
		if place.DisplayName != "" {
			loc.FormattedAddress = place.DisplayName
		}
		out = append(out, loc)
	}
	return out
}
