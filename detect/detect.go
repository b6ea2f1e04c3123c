// Package detect finds geographic references in free-form text: raw
// coordinate pairs, maps-provider links and locale-scored postal addresses.
// Detection is heuristic and silent about misses; malformed matches are
// dropped, never errors.
package detect

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"mapchat.dev/geo"
)

// Kind classifies what a detection matched.
type Kind string

const (
	KindCoordinates Kind = "coordinates"
	KindAddress     Kind = "address"
	KindMapsLink    Kind = "maps_link"
)

// Location is one detection from one text unit. Coordinates are set directly
// for coordinate pairs and links with embedded coordinates; addresses and
// bare links are resolved later by the geocoder.
type Location struct {
	ID               string      `json:"id"`
	Text             string      `json:"text"`
	Kind             Kind        `json:"type"`
	Coordinates      *geo.LatLng `json:"coordinates,omitempty"`
	Address          string      `json:"address,omitempty"`
	FormattedAddress string      `json:"formattedAddress,omitempty"`
	MessageID        string      `json:"messageId,omitempty"`
	Timestamp        string      `json:"timestamp,omitempty"`
	Author           string      `json:"author,omitempty"`
}

// Source identifies the text unit a scan came from.
type Source struct {
	MessageID string
	Timestamp string
	Author    string
}

var (
	// Coordinate pairs, optionally prefixed with lat/lng labels.
	// Matches "37.7749, -122.4194", "10,10" and "Lat: 37.7, Lng: -122.4".
	coordRe = regexp.MustCompile(`(?i)(?:lat[a-z]*\s*[:=]\s*)?(-?\d+(?:\.\d+)?)\s*,\s*(?:(?:lng|lon[a-z]*)\s*[:=]\s*)?(-?\d+(?:\.\d+)?)`)

	// Standard maps-provider URLs; shortened links are resolved elsewhere.
	mapsURLRe = regexp.MustCompile(`(?i)https?://(www\.|maps\.)?google\.(com|maps)[^\s]*`)

	// Embedded coordinates inside a maps URL: @lat,lng or ?q=lat,lng.
	urlCoordRe = regexp.MustCompile(`[@=](-?\d+\.?\d*),(-?\d+\.?\d*)`)

	// Explicit author intent, accepted without scoring.
	explicitAddressRe = regexp.MustCompile(`(?i)(?:ADDRESS|DIRECTION):\s*([^\n\r]+)`)

	// Permissive digit-anchored span for address candidates.
	candidateRe = regexp.MustCompile(`\b[\wÁÉÍÓÚÑÄÖÜáéíóúñäöü.,#-]{3,80}\d{1,5}[\wÁÉÍÓÚÑÄÖÜáéíóúñäöü\s.,#-]{5,80}\b`)

	// Hard negatives for the scored address phase.
	urlSchemeRe = regexp.MustCompile(`(?i)https?://`)
	emailRe     = regexp.MustCompile(`\S+@\S+\.\S+`)
)

// Detector scans text units for locations. Zero value is not usable; use New.
type Detector struct {
	Locale string
	IDs    *IDGenerator
}

// New returns a detector for the given locale key. Unknown keys fall back to
// "en" at scoring time.
func New(locale string) *Detector {
	if locale == "" {
		locale = fallbackLocale
	}
	return &Detector{Locale: locale, IDs: newIDGenerator()}
}

// Detect runs all three detectors over one text unit and returns the typed
// detections with generated IDs. IDs are unique within this call only.
func (d *Detector) Detect(text string, src Source) []Location {
	d.IDs.reset()

	all := d.DetectMapsLinks(text, src.MessageID)
	all = append(all, d.DetectCoordinates(text, src.MessageID)...)
	all = append(all, d.DetectAddresses(text, d.Locale, src.MessageID)...)

	for i := range all {
		all[i].MessageID = src.MessageID
		all[i].Timestamp = src.Timestamp
		all[i].Author = src.Author
	}
	return all
}

// DetectCoordinates finds lat,lng pairs. Each match is range-validated;
// invalid pairs (phone numbers and other digit runs) are silently dropped.
func (d *Detector) DetectCoordinates(text, messageID string) []Location {
	var out []Location
	index := 0

	for _, m := range coordRe.FindAllStringSubmatch(text, -1) {
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lng, errLng := strconv.ParseFloat(m[2], 64)
		if errLat != nil || errLng != nil || !geo.IsValid(lat, lng) {
			continue
		}

		coords := &geo.LatLng{Lat: lat, Lng: lng}
		out = append(out, Location{
			ID:          d.IDs.next(KindCoordinates, m[0], coords, messageID, index),
			Text:        m[0],
			Kind:        KindCoordinates,
			Coordinates: coords,
		})
		index++
	}
	return out
}

// DetectMapsLinks finds maps-provider URLs. Links with embedded coordinates
// resolve immediately; the rest are emitted unresolved for the geocoder.
func (d *Detector) DetectMapsLinks(text, messageID string) []Location {
	var out []Location

	for index, url := range mapsURLRe.FindAllString(text, -1) {
		if m := urlCoordRe.FindStringSubmatch(url); m != nil {
			lat, errLat := strconv.ParseFloat(m[1], 64)
			lng, errLng := strconv.ParseFloat(m[2], 64)
			if errLat == nil && errLng == nil && geo.IsValid(lat, lng) {
				coords := &geo.LatLng{Lat: lat, Lng: lng}
				out = append(out, Location{
					ID:          d.IDs.next(KindMapsLink, url, coords, messageID, index),
					Text:        url,
					Kind:        KindMapsLink,
					Coordinates: coords,
				})
				continue
			}
			// Embedded pair out of range: treat as unresolved link.
		}

		out = append(out, Location{
			ID:   d.IDs.next(KindMapsLink, url, nil, messageID, index),
			Text: url,
			Kind: KindMapsLink,
		})
	}
	return out
}

// DetectAddresses runs the two-phase address detector. Phase 1 accepts
// explicit ADDRESS:/DIRECTION: prefixes without scoring. Phase 2 extracts
// digit-anchored candidate spans and accepts those the locale scorer rates
// at 4 or higher. Text containing a URL scheme or an email-like token skips
// phase 2 entirely.
func (d *Detector) DetectAddresses(text, localeKey, messageID string) []Location {
	var out []Location
	index := 0

	for _, m := range explicitAddressRe.FindAllStringSubmatch(text, -1) {
		address := strings.TrimSpace(m[1])
		if len(address) <= 2 {
			continue
		}
		out = append(out, Location{
			ID:      d.IDs.next(KindAddress, address, nil, messageID, index),
			Text:    m[0],
			Kind:    KindAddress,
			Address: address,
		})
		index++
	}

	// URLs and emails are never addresses and commonly co-occur with
	// false-positive digit runs.
	if urlSchemeRe.MatchString(text) || emailRe.MatchString(text) {
		return out
	}

	for _, raw := range candidateRe.FindAllString(text, -1) {
		candidate := strings.TrimSpace(raw)
		if len(candidate) < 5 {
			continue
		}
		if coveredByExplicit(out, candidate) {
			continue
		}
		if score := ScoreAddress(candidate, localeKey); score < 4 {
			continue
		}

		log.Printf("[detect] address candidate accepted: %q", candidate)
		out = append(out, Location{
			ID:      d.IDs.next(KindAddress, candidate, nil, messageID, index),
			Text:    candidate,
			Kind:    KindAddress,
			Address: candidate,
		})
		index++
	}

	return out
}

// coveredByExplicit drops candidates overlapping an explicit-prefix address
// so the same span is not emitted twice.
func coveredByExplicit(accepted []Location, candidate string) bool {
	for _, loc := range accepted {
		if loc.Address == "" {
			continue
		}
		if strings.Contains(candidate, loc.Address) || strings.Contains(loc.Address, candidate) {
			return true
		}
	}
	return false
}
