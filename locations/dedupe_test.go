package locations

import (
	"testing"

	"mapchat.dev/detect"
	"mapchat.dev/geo"
)

func loc(id, text, address, messageID string, coords *geo.LatLng) detect.Location {
	return detect.Location{
		ID:          id,
		Text:        text,
		Address:     address,
		MessageID:   messageID,
		Coordinates: coords,
	}
}

func TestAreDuplicate(t *testing.T) {
	base := &geo.LatLng{Lat: 37.7749, Lng: -122.4194}
	near := &geo.LatLng{Lat: 37.77495, Lng: -122.41945} // 0.00005 deg apart
	far := &geo.LatLng{Lat: 37.7754, Lng: -122.4199}    // 0.0005 deg apart

	tests := []struct {
		name string
		a, b detect.Location
		want bool
	}{
		{
			"same id",
			loc("x", "here", "", "m1", nil),
			loc("x", "there", "", "m2", nil),
			true,
		},
		{
			"different messages never duplicate",
			loc("a", "37.7749, -122.4194", "", "m1", base),
			loc("b", "37.7749, -122.4194", "", "m2", base),
			false,
		},
		{
			"near coordinates and equal text",
			loc("a", "37.7749, -122.4194", "", "m1", base),
			loc("b", "37.7749, -122.4194", "", "m1", near),
			true,
		},
		{
			"coordinates outside tolerance",
			loc("a", "37.7749, -122.4194", "", "m1", base),
			loc("b", "37.7749, -122.4194", "", "m1", far),
			false,
		},
		{
			"near coordinates and equal address",
			loc("a", "ADDRESS: 1 Market St", "1 Market St", "m1", base),
			loc("b", "1 Market St", "1 Market St", "m1", near),
			true,
		},
		{
			"text and address both differ",
			loc("a", "pier 39", "Pier 39, SF", "m1", base),
			loc("b", "ferry building", "1 Ferry Building", "m1", base),
			false,
		},
		{
			"missing coordinates",
			loc("a", "1 Market St", "1 Market St", "m1", nil),
			loc("b", "1 Market St", "1 Market St", "m1", base),
			false,
		},
		{
			"near coordinates but empty addresses and different text",
			loc("a", "over here", "", "m1", base),
			loc("b", "over there", "", "", near),
			false,
		},
	}

	for _, tt := range tests {
		if got := AreDuplicate(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: AreDuplicate = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAreDuplicateSymmetric(t *testing.T) {
	base := &geo.LatLng{Lat: 48.8584, Lng: 2.2945}
	near := &geo.LatLng{Lat: 48.85845, Lng: 2.29455}

	a := loc("a", "eiffel", "Tour Eiffel", "m1", base)
	b := loc("b", "eiffel", "Tour Eiffel", "m1", near)

	if AreDuplicate(a, b) != AreDuplicate(b, a) {
		t.Error("predicate is not symmetric")
	}
}

func TestDeduplicateFirstSeenWins(t *testing.T) {
	base := &geo.LatLng{Lat: 37.7749, Lng: -122.4194}
	near := &geo.LatLng{Lat: 37.77491, Lng: -122.41941}

	in := []detect.Location{
		loc("first", "37.7749, -122.4194", "", "m1", base),
		loc("second", "37.7749, -122.4194", "", "m1", near),
		loc("third", "48.8584, 2.2945", "", "m1", &geo.LatLng{Lat: 48.8584, Lng: 2.2945}),
	}

	out := Deduplicate(in)
	if len(out) != 2 {
		t.Fatalf("kept %d locations, want 2", len(out))
	}
	if out[0].ID != "first" || out[1].ID != "third" {
		t.Errorf("kept %s, %s; want first, third", out[0].ID, out[1].ID)
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	in := []detect.Location{
		loc("a", "37.7749, -122.4194", "", "m1", &geo.LatLng{Lat: 37.7749, Lng: -122.4194}),
		loc("b", "48.8584, 2.2945", "", "m1", &geo.LatLng{Lat: 48.8584, Lng: 2.2945}),
	}

	once := Deduplicate(in)
	twice := Deduplicate(once)
	if len(once) != len(twice) {
		t.Errorf("second pass changed the set: %d -> %d", len(once), len(twice))
	}
}

func TestFilterAgainstPinned(t *testing.T) {
	pinned := []Pinned{{
		ID:   "pin-1",
		Lat:  37.7749,
		Lng:  -122.4194,
		Text: "37.7749, -122.4194",
	}}

	in := []detect.Location{
		loc("a", "37.7749, -122.4194", "", "", &geo.LatLng{Lat: 37.77491, Lng: -122.41941}),
		loc("b", "48.8584, 2.2945", "", "", &geo.LatLng{Lat: 48.8584, Lng: 2.2945}),
	}

	out := FilterAgainstPinned(in, pinned)
	if len(out) != 1 {
		t.Fatalf("kept %d locations, want 1", len(out))
	}
	if out[0].ID != "b" {
		t.Errorf("kept %s, want b", out[0].ID)
	}
}
