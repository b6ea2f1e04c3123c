package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"mapchat.dev/data"
	"mapchat.dev/locations"
	"mapchat.dev/route"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	b, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}

// DetectRequest is a batch of conversation messages to scan.
type DetectRequest struct {
	ConversationID string              `json:"conversationId"`
	Messages       []locations.Message `json:"messages"`
}

// DetectHandler scans messages for locations, resolves them and filters out
// places that are already pinned.
func (s *Server) DetectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request body", 400)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "No messages to scan", 400)
		return
	}

	found := s.Resolver.Scan(req.Messages)
	found = locations.FilterAgainstPinned(found, s.Store.Pinned.List())

	s.Hub.Broadcast(EventLocationsUpdated)
	writeJSON(w, map[string]interface{}{
		"conversationId": req.ConversationID,
		"locations":      found,
	})
}

// RouteHandler computes a route with the current speed/cost tables.
func (s *Server) RouteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req route.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request body", 400)
		return
	}

	res, err := s.Engine.Calculate(req, s.Store.Settings.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), 502)
		return
	}
	writeJSON(w, res)
}

// LocationsHandler manages the pinned location set.
func (s *Server) LocationsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		writeJSON(w, map[string]interface{}{"locations": s.Store.Pinned.List()})

	case "POST":
		var pin locations.Pinned
		if err := json.NewDecoder(r.Body).Decode(&pin); err != nil {
			http.Error(w, "Bad request body", 400)
			return
		}
		if pin.ID == "" {
			http.Error(w, "Pin id required", 400)
			return
		}
		if pin.PinnedAt == 0 {
			pin.PinnedAt = time.Now().UnixMilli()
		}
		added := s.Store.Pinned.Add(pin)
		if added {
			s.saveAsync()
			s.Hub.Broadcast(EventLocationsUpdated)
		}
		writeJSON(w, map[string]bool{"added": added})

	case "DELETE":
		r.ParseForm()
		id := r.Form.Get("id")
		if id == "" {
			http.Error(w, "Pin id required", 400)
			return
		}
		removed := s.Store.Pinned.Remove(id)
		if removed {
			s.saveAsync()
			s.Hub.Broadcast(EventLocationsUpdated)
		}
		writeJSON(w, map[string]bool{"removed": removed})

	default:
		http.Error(w, "Method not allowed", 405)
	}
}

// UpdateLocationHandler edits a pin's name, address or text.
func (s *Server) UpdateLocationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Address string `json:"address"`
		Text    string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request body", 400)
		return
	}

	if !s.Store.Pinned.Update(req.ID, req.Name, req.Address, req.Text) {
		http.Error(w, "Pin not found", 404)
		return
	}
	s.saveAsync()
	s.Hub.Broadcast(EventLocationsUpdated)
	writeJSON(w, map[string]bool{"updated": true})
}

// RoutesHandler manages saved routes.
func (s *Server) RoutesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		writeJSON(w, map[string]interface{}{"routes": s.Store.Routes.List()})

	case "POST":
		var sr data.SavedRoute
		if err := json.NewDecoder(r.Body).Decode(&sr); err != nil {
			http.Error(w, "Bad request body", 400)
			return
		}
		if !sr.Mode.Valid() {
			http.Error(w, fmt.Sprintf("Unknown travel mode %q", sr.Mode), 400)
			return
		}
		id := s.Store.Routes.Add(sr)
		s.saveAsync()
		s.Hub.Broadcast(EventRoutesUpdated)
		writeJSON(w, map[string]string{"id": id})

	case "DELETE":
		r.ParseForm()
		id := r.Form.Get("id")
		if id == "" {
			http.Error(w, "Route id required", 400)
			return
		}
		removed := s.Store.Routes.Remove(id)
		if removed {
			s.saveAsync()
			s.Hub.Broadcast(EventRoutesUpdated)
		}
		writeJSON(w, map[string]bool{"removed": removed})

	default:
		http.Error(w, "Method not allowed", 405)
	}
}

// RenameRouteHandler changes a saved route's display name.
func (s *Server) RenameRouteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "Route id and name required", 400)
		return
	}

	if !s.Store.Routes.Rename(req.ID, req.Name) {
		http.Error(w, "Route not found", 404)
		return
	}
	s.saveAsync()
	s.Hub.Broadcast(EventRoutesUpdated)
	writeJSON(w, map[string]bool{"renamed": true})
}

// SettingsHandler reads and writes the speed/cost tables.
func (s *Server) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		writeJSON(w, s.Store.Settings.Snapshot())

	case "POST":
		var settings route.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "Bad request body", 400)
			return
		}
		s.Store.Settings.Set(settings)
		s.saveAsync()
		s.Hub.Broadcast(EventSettingsUpdated)
		writeJSON(w, s.Store.Settings.Snapshot())

	default:
		http.Error(w, "Method not allowed", 405)
	}
}

// ResetSettingsHandler restores the default tables.
func (s *Server) ResetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	settings := s.Store.Settings.Reset()
	s.saveAsync()
	s.Hub.Broadcast(EventSettingsUpdated)
	writeJSON(w, settings)
}

// StyleHandler reads and writes the map style preference.
func (s *Server) StyleHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		writeJSON(w, map[string]data.MapStyle{"style": s.Store.Style.Get()})

	case "POST":
		var req struct {
			Style data.MapStyle `json:"style"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad request body", 400)
			return
		}
		if err := s.Store.Style.Set(req.Style); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		s.saveAsync()
		s.Hub.Broadcast(EventStyleUpdated)
		writeJSON(w, map[string]data.MapStyle{"style": s.Store.Style.Get()})

	default:
		http.Error(w, "Method not allowed", 405)
	}
}

// ConversationsHandler lists conversations referenced by saved state.
func (s *Server) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	writeJSON(w, map[string]interface{}{"conversations": s.Store.Conversations()})
}

// ExportCSVHandler downloads the pinned set as CSV.
func (s *Server) ExportCSVHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="map-points-%s.csv"`, time.Now().Format("2006-01-02")))
	if err := s.Store.ExportCSV(w); err != nil {
		log.Printf("[server] csv export: %v", err)
	}
}

// ImportCSVHandler pins every valid point in the uploaded CSV.
func (s *Server) ImportCSVHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	n, err := s.Store.ImportCSV(r.Body)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	s.saveAsync()
	s.Hub.Broadcast(EventLocationsUpdated)
	writeJSON(w, map[string]int{"imported": n})
}

// SelectionModeHandler relays a selection-mode toggle to all observers. The
// mode itself is client state; the server only propagates the change.
func (s *Server) SelectionModeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	s.Hub.Broadcast(EventSelectionModeChanged)
	writeJSON(w, map[string]bool{"ok": true})
}

// EventsHandler streams broadcast events over a websocket, or server-sent
// events for plain HTTP clients.
func (s *Server) EventsHandler(w http.ResponseWriter, r *http.Request) {
	o := NewObserver()
	s.Hub.Observe(o)
	defer func() {
		s.Hub.Forget(o)
		close(o.Kill)
	}()

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if IsWebSocket(r) {
		ServeWebSocket(w, r, o)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	for {
		select {
		case ev := <-o.Events:
			b, _ := json.Marshal(ev)
			fmt.Fprintf(w, "data: %v\n\n", string(b))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}
