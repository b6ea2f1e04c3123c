package data

import (
	"bytes"
	"strings"
	"testing"

	"mapchat.dev/geo"
	"mapchat.dev/locations"
	"mapchat.dev/route"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPinnedAddRejectsDuplicates(t *testing.T) {
	s := openStore(t)

	if !s.Pinned.Add(locations.Pinned{ID: "a", Lat: 37.7749, Lng: -122.4194, Text: "first"}) {
		t.Fatal("first pin rejected")
	}
	if s.Pinned.Add(locations.Pinned{ID: "a", Lat: 10, Lng: 10}) {
		t.Error("duplicate id accepted")
	}
	if s.Pinned.Add(locations.Pinned{ID: "b", Lat: 37.77495, Lng: -122.41945}) {
		t.Error("pin within coordinate tolerance accepted")
	}
	if !s.Pinned.Add(locations.Pinned{ID: "c", Lat: 37.7760, Lng: -122.4194}) {
		t.Error("distinct pin rejected")
	}
	if len(s.Pinned.List()) != 2 {
		t.Errorf("pinned count = %d, want 2", len(s.Pinned.List()))
	}
}

func TestPinnedNameUpgrade(t *testing.T) {
	s := openStore(t)
	s.Pinned.Add(locations.Pinned{
		ID: "a", Lat: 1, Lng: 2,
		Text: "1.0000, 2.0000",
		Name: "Location at 1.0000, 2.0000",
	})

	// A reverse-geocoded address replaces the placeholder name.
	if !s.Pinned.Update("a", "", "1 Ocean Road", "") {
		t.Fatal("update failed")
	}
	got := s.Pinned.List()[0]
	if got.Name != "1 Ocean Road" {
		t.Errorf("name = %q, want upgraded to address", got.Name)
	}

	// A user-chosen name is never overwritten by later address updates.
	s.Pinned.Update("a", "My Spot", "", "")
	s.Pinned.Update("a", "", "2 Ocean Road", "")
	got = s.Pinned.List()[0]
	if got.Name != "My Spot" {
		t.Errorf("name = %q, want user name kept", got.Name)
	}
}

func TestPinnedPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	s.Pinned.Add(locations.Pinned{ID: "a", Lat: 37.7749, Lng: -122.4194, Text: "pier"})
	if err := s.SaveAll(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	got := reopened.Pinned.List()
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("reloaded pins = %+v", got)
	}
}

func TestSavedRouteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	// Polyline encoding rounds to five decimals, so the fixture uses
	// five-decimal coordinates to stay exact across the round trip.
	geometry := []geo.LatLng{
		{Lat: 40.00000, Lng: -75.00000},
		{Lat: 40.05000, Lng: -75.05000},
		{Lat: 40.10000, Lng: -75.10000},
	}
	id := s.Routes.Add(SavedRoute{
		Origin:      RoutePoint{LatLng: geo.LatLng{Lat: 40.0, Lng: -75.0}},
		Destination: RoutePoint{LatLng: geo.LatLng{Lat: 40.1, Lng: -75.1}},
		Waypoints:   []route.Waypoint{{LatLng: geo.LatLng{Lat: 40.05, Lng: -75.05}, ID: "wp1"}},
		Mode:        route.ModeDriving,
		Info:        RouteInfo{Distance: "15.70 km", Duration: "16 min", Cost: "$2.36"},
		Geometry:    geometry,
	})
	if err := s.SaveAll(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := reopened.Routes.Get(id)
	if !ok {
		t.Fatal("saved route not found after reload")
	}
	if got.Mode != route.ModeDriving {
		t.Errorf("mode = %q", got.Mode)
	}
	if got.Info.Distance != "15.70 km" || got.Info.Duration != "16 min" {
		t.Errorf("route info = %+v", got.Info)
	}
	if len(got.Waypoints) != 1 || got.Waypoints[0].ID != "wp1" {
		t.Errorf("waypoints = %+v", got.Waypoints)
	}
	if len(got.Geometry) != len(geometry) {
		t.Fatalf("geometry points = %d, want %d", len(got.Geometry), len(geometry))
	}
	for i := range geometry {
		if got.Geometry[i] != geometry[i] {
			t.Errorf("geometry[%d] = %v, want %v", i, got.Geometry[i], geometry[i])
		}
	}
}

func TestGenerateRouteName(t *testing.T) {
	name := GenerateRouteName(route.ModeDriving,
		geo.LatLng{Lat: 40, Lng: -75}, geo.LatLng{Lat: 40.1, Lng: -75.1}, 0)
	if name != "Driving route: 40.0000, -75.0000 → 40.1000, -75.1000" {
		t.Errorf("name = %q", name)
	}

	name = GenerateRouteName(route.ModeBoat, geo.LatLng{}, geo.LatLng{}, 2)
	if name != "Boat route (2 waypoints)" {
		t.Errorf("name = %q", name)
	}
}

func TestRoutesRename(t *testing.T) {
	s := openStore(t)
	id := s.Routes.Add(SavedRoute{Mode: route.ModeWalking})
	if !s.Routes.Rename(id, "Morning walk") {
		t.Fatal("rename failed")
	}
	got, _ := s.Routes.Get(id)
	if got.Name != "Morning walk" {
		t.Errorf("name = %q", got.Name)
	}
	if s.Routes.Rename("route-missing", "x") {
		t.Error("rename of missing route reported success")
	}
}

func TestSettingsMergeAndReset(t *testing.T) {
	s := openStore(t)

	s.Settings.Set(route.Settings{
		Speeds: map[route.TravelMode]float64{route.ModeDriving: 90},
	})
	snap := s.Settings.Snapshot()
	if snap.Speeds[route.ModeDriving] != 90 {
		t.Errorf("driving speed = %v", snap.Speeds[route.ModeDriving])
	}
	if snap.Speeds[route.ModePlane] != 850 {
		t.Errorf("plane speed = %v, want default backfilled", snap.Speeds[route.ModePlane])
	}

	s.Settings.Reset()
	if got := s.Settings.Snapshot().Speeds[route.ModeDriving]; got != 60 {
		t.Errorf("driving speed after reset = %v", got)
	}
}

func TestSettingsSnapshotIsIsolated(t *testing.T) {
	s := openStore(t)
	snap := s.Settings.Snapshot()
	snap.Speeds[route.ModeDriving] = 999
	if got := s.Settings.Snapshot().Speeds[route.ModeDriving]; got == 999 {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestStyleValidation(t *testing.T) {
	s := openStore(t)
	if s.Style.Get() != StyleStandard {
		t.Errorf("default style = %q", s.Style.Get())
	}
	if err := s.Style.Set(StyleSatellite); err != nil {
		t.Fatal(err)
	}
	if err := s.Style.Set("neon"); err == nil {
		t.Error("unknown style accepted")
	}
	if s.Style.Get() != StyleSatellite {
		t.Errorf("style = %q", s.Style.Get())
	}
}

func TestCSVRoundTrip(t *testing.T) {
	s := openStore(t)
	s.Pinned.Add(locations.Pinned{ID: "a", Lat: 37.7749, Lng: -122.4194, Name: "Pier 39"})
	s.Pinned.Add(locations.Pinned{ID: "b", Lat: 48.8584, Lng: 2.2945, Text: "eiffel"})

	var buf bytes.Buffer
	if err := s.ExportCSV(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "coord,name") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "Pier 39") {
		t.Errorf("name missing from export: %q", out)
	}

	fresh := openStore(t)
	n, err := fresh.ImportCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported %d points, want 2", n)
	}
	pins := fresh.Pinned.List()
	if len(pins) != 2 {
		t.Fatalf("pinned count = %d", len(pins))
	}
}

func TestCSVImportSkipsInvalidRows(t *testing.T) {
	s := openStore(t)
	in := strings.NewReader(`coord,name
"37.7749,-122.4194","Pier 39"
"not,numbers","Broken"
"95.0,10.0","Out of range"
"48.8584,2.2945",""
`)
	n, err := s.ImportCSV(in)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported %d points, want 2", n)
	}

	var unnamed bool
	for _, p := range s.Pinned.List() {
		if strings.HasPrefix(p.Name, "Point ") {
			unnamed = true
		}
	}
	if !unnamed {
		t.Error("nameless row did not get a generated name")
	}
}

func TestCSVImportEmptyIsError(t *testing.T) {
	s := openStore(t)
	if _, err := s.ImportCSV(strings.NewReader("coord,name\n")); err == nil {
		t.Error("expected error for csv without valid points")
	}
}

func TestConversations(t *testing.T) {
	s := openStore(t)
	s.Pinned.Add(locations.Pinned{ID: "a", Lat: 1, Lng: 1, ConversationID: "conv-aaaa1111"})
	s.Pinned.Add(locations.Pinned{ID: "b", Lat: 2, Lng: 2, ConversationID: "conv-aaaa1111"})
	s.Pinned.Add(locations.Pinned{ID: "c", Lat: 3, Lng: 3, ConversationID: "conv-bbbb2222"})
	s.Routes.Add(SavedRoute{Mode: route.ModeDriving, ConversationID: "conv-aaaa1111"})

	convs := s.Conversations()
	if len(convs) != 2 {
		t.Fatalf("conversations = %d, want 2", len(convs))
	}
	if convs[0].ID != "conv-aaaa1111" {
		t.Errorf("busiest conversation = %q", convs[0].ID)
	}
	if convs[0].PointsCount != 2 || convs[0].RoutesCount != 1 {
		t.Errorf("counts = %+v", convs[0])
	}
	if !strings.HasPrefix(convs[0].Label, "Conversation conv-aaa") {
		t.Errorf("label = %q", convs[0].Label)
	}
}
