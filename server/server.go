// Package server exposes the detection pipeline, route engine and persisted
// map state over HTTP, and fans state-change events out to connected
// clients.
package server

import (
	"log"
	"net/http"

	"mapchat.dev/data"
	"mapchat.dev/locations"
	"mapchat.dev/route"
)

// Server wires the application components behind the HTTP API.
type Server struct {
	Store    *data.Store
	Engine   *route.Engine
	Resolver *locations.Resolver
	Hub      *Hub
}

// New returns a server with a fresh event hub.
func New(store *data.Store, engine *route.Engine, resolver *locations.Resolver) *Server {
	return &Server{
		Store:    store,
		Engine:   engine,
		Resolver: resolver,
		Hub:      NewHub(),
	}
}

// Handler builds the API routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/detect", s.DetectHandler)
	mux.HandleFunc("/route", s.RouteHandler)
	mux.HandleFunc("/locations", s.LocationsHandler)
	mux.HandleFunc("/locations/update", s.UpdateLocationHandler)
	mux.HandleFunc("/routes", s.RoutesHandler)
	mux.HandleFunc("/routes/rename", s.RenameRouteHandler)
	mux.HandleFunc("/settings", s.SettingsHandler)
	mux.HandleFunc("/settings/reset", s.ResetSettingsHandler)
	mux.HandleFunc("/style", s.StyleHandler)
	mux.HandleFunc("/conversations", s.ConversationsHandler)
	mux.HandleFunc("/export/csv", s.ExportCSVHandler)
	mux.HandleFunc("/import/csv", s.ImportCSVHandler)
	mux.HandleFunc("/selection-mode", s.SelectionModeHandler)
	mux.HandleFunc("/events", s.EventsHandler)

	return WithCors(mux)
}

// saveAsync persists all records off the request path. Persistence failures
// are logged and never surface to the API caller.
func (s *Server) saveAsync() {
	go func() {
		if err := s.Store.SaveAll(); err != nil {
			log.Printf("[server] save: %v", err)
		}
	}()
}

// WithCors opens the API to browser clients on any origin.
func WithCors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			return
		}
		h.ServeHTTP(w, r)
	})
}
