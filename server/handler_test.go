package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mapchat.dev/data"
	"mapchat.dev/detect"
	"mapchat.dev/geo"
	"mapchat.dev/geocode"
	"mapchat.dev/locations"
	"mapchat.dev/route"
)

func geoPoint(lat, lng float64) geo.LatLng {
	return geo.LatLng{Lat: lat, Lng: lng}
}

func newTestServer(t *testing.T, osrm, nominatim *httptest.Server) *Server {
	t.Helper()

	store, err := data.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var backend *route.OSRM
	if osrm != nil {
		backend = route.NewOSRM()
		backend.BaseURL = osrm.URL
		backend.HTTPClient = osrm.Client()
	}

	geocoder := geocode.NewClient()
	if nominatim != nil {
		geocoder.BaseURL = nominatim.URL
		geocoder.HTTPClient = nominatim.Client()
	}

	resolver := locations.NewResolver(detect.New("en"), geocoder)
	resolver.Sleep = func(time.Duration) {}

	return New(store, route.NewEngine(backend), resolver)
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func TestPinLifecycle(t *testing.T) {
	s := newTestServer(t, nil, nil)
	h := s.Handler()

	o := NewObserver()
	s.Hub.Observe(o)
	defer s.Hub.Forget(o)

	w := postJSON(t, h, "/locations", locations.Pinned{
		ID: "pin-1", Lat: 37.7749, Lng: -122.4194, Text: "dinner here",
	})
	if w.Code != 200 {
		t.Fatalf("pin add status = %d: %s", w.Code, w.Body)
	}

	select {
	case ev := <-o.Events:
		if ev.Kind != EventLocationsUpdated {
			t.Errorf("event = %q", ev.Kind)
		}
	default:
		t.Error("no event broadcast for pin add")
	}

	// Second insert within tolerance is a no-op.
	w = postJSON(t, h, "/locations", locations.Pinned{
		ID: "pin-2", Lat: 37.77495, Lng: -122.41945,
	})
	var added struct {
		Added bool `json:"added"`
	}
	json.Unmarshal(w.Body.Bytes(), &added)
	if added.Added {
		t.Error("duplicate pin accepted")
	}

	w = get(t, h, "/locations")
	var list struct {
		Locations []locations.Pinned `json:"locations"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Locations) != 1 {
		t.Fatalf("pinned count = %d", len(list.Locations))
	}

	req := httptest.NewRequest("DELETE", "/locations?id=pin-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("delete status = %d", rec.Code)
	}

	w = get(t, h, "/locations")
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Locations) != 0 {
		t.Errorf("pins after delete = %d", len(list.Locations))
	}
}

func TestSettingsEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)
	h := s.Handler()

	w := postJSON(t, h, "/settings", route.Settings{
		Speeds: map[route.TravelMode]float64{route.ModeDriving: 90},
	})
	if w.Code != 200 {
		t.Fatalf("settings post status = %d", w.Code)
	}

	var snap route.Settings
	json.Unmarshal(get(t, h, "/settings").Body.Bytes(), &snap)
	if snap.Speeds[route.ModeDriving] != 90 {
		t.Errorf("driving speed = %v", snap.Speeds[route.ModeDriving])
	}
	if snap.Speeds[route.ModeWalking] != 5 {
		t.Errorf("walking speed = %v, want default preserved", snap.Speeds[route.ModeWalking])
	}

	w = postJSON(t, h, "/settings/reset", nil)
	json.Unmarshal(w.Body.Bytes(), &snap)
	if snap.Speeds[route.ModeDriving] != 60 {
		t.Errorf("driving speed after reset = %v", snap.Speeds[route.ModeDriving])
	}
}

func TestStyleEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)
	h := s.Handler()

	if w := postJSON(t, h, "/style", map[string]string{"style": "satellite"}); w.Code != 200 {
		t.Fatalf("style post status = %d: %s", w.Code, w.Body)
	}
	if w := postJSON(t, h, "/style", map[string]string{"style": "neon"}); w.Code != 400 {
		t.Errorf("invalid style status = %d", w.Code)
	}

	var got struct {
		Style data.MapStyle `json:"style"`
	}
	json.Unmarshal(get(t, h, "/style").Body.Bytes(), &got)
	if got.Style != data.StyleSatellite {
		t.Errorf("style = %q", got.Style)
	}
}

func TestRouteEndpoint(t *testing.T) {
	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 10000,
				"duration": 600,
				"geometry": {"coordinates": [[-75.0, 40.0], [-75.1, 40.1]]},
				"legs": [{"distance": 10000, "duration": 600, "steps": []}]
			}]
		}`))
	}))
	defer osrm.Close()

	s := newTestServer(t, osrm, nil)
	h := s.Handler()

	w := postJSON(t, h, "/route", route.Request{
		Origin:      geoPoint(40.0, -75.0),
		Destination: geoPoint(40.1, -75.1),
		Mode:        route.ModeDriving,
	})
	if w.Code != 200 {
		t.Fatalf("route status = %d: %s", w.Code, w.Body)
	}

	var res route.Result
	json.Unmarshal(w.Body.Bytes(), &res)
	if res.Distance != "10.00 km" {
		t.Errorf("distance = %q", res.Distance)
	}
	if res.Cost != "$1.50" {
		t.Errorf("cost = %q", res.Cost)
	}
}

func TestRouteEndpointBackendDown(t *testing.T) {
	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer osrm.Close()

	s := newTestServer(t, osrm, nil)
	w := postJSON(t, s.Handler(), "/route", route.Request{
		Origin:      geoPoint(40.0, -75.0),
		Destination: geoPoint(40.1, -75.1),
		Mode:        route.ModeDriving,
	})
	if w.Code != 502 {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestDetectEndpoint(t *testing.T) {
	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/reverse" {
			w.Write([]byte(`{"display_name":"Market Street, San Francisco"}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer nominatim.Close()

	s := newTestServer(t, nil, nominatim)
	w := postJSON(t, s.Handler(), "/detect", DetectRequest{
		ConversationID: "conv-1",
		Messages: []locations.Message{
			{ID: "m1", Text: "lets meet at 37.7749, -122.4194"},
		},
	})
	if w.Code != 200 {
		t.Fatalf("detect status = %d: %s", w.Code, w.Body)
	}

	var res struct {
		Locations []detect.Location `json:"locations"`
	}
	json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Locations) != 1 {
		t.Fatalf("detections = %d", len(res.Locations))
	}
	if res.Locations[0].FormattedAddress != "Market Street, San Francisco" {
		t.Errorf("formatted address = %q", res.Locations[0].FormattedAddress)
	}
}

func TestCSVEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil)
	h := s.Handler()

	req := httptest.NewRequest("POST", "/import/csv",
		strings.NewReader("coord,name\n\"37.7749,-122.4194\",\"Pier 39\"\n"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("import status = %d: %s", w.Code, w.Body)
	}

	out := get(t, h, "/export/csv")
	if ct := out.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(out.Body.String(), "Pier 39") {
		t.Errorf("export body = %q", out.Body.String())
	}
}

func TestMethodGuards(t *testing.T) {
	s := newTestServer(t, nil, nil)
	h := s.Handler()

	if w := get(t, h, "/detect"); w.Code != 405 {
		t.Errorf("GET /detect status = %d", w.Code)
	}
	if w := get(t, h, "/route"); w.Code != 405 {
		t.Errorf("GET /route status = %d", w.Code)
	}
}

func TestCorsPreflights(t *testing.T) {
	s := newTestServer(t, nil, nil)
	req := httptest.NewRequest("OPTIONS", "/locations", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}
