package main

import (
	"log"
	"net/http"

	"mapchat.dev/config"
	"mapchat.dev/data"
	"mapchat.dev/detect"
	"mapchat.dev/geocode"
	"mapchat.dev/locations"
	"mapchat.dev/route"
	"mapchat.dev/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	store, err := data.Open(cfg.Data.Dir)
	if err != nil {
		log.Fatalf("[main] open data dir %s: %v", cfg.Data.Dir, err)
	}
	store.StartBackgroundSave(cfg.Data.SaveInterval)

	geocoder := geocode.NewClient()
	geocoder.BaseURL = cfg.Geocode.BaseURL
	geocoder.UserAgent = cfg.Geocode.UserAgent

	resolver := locations.NewResolver(detect.New(cfg.Detect.Locale), geocoder)
	resolver.Throttle = cfg.Geocode.Throttle

	backend := route.NewOSRM()
	backend.BaseURL = cfg.Routing.OSRMURL

	engine := route.NewEngine(backend)
	engine.DriveTolerance = cfg.Routing.DriveTolerance
	engine.SeaSegmentKm = cfg.Routing.SeaSegmentKm

	srv := server.New(store, engine, resolver)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("[main] listening on %s", cfg.Server.Addr())
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("[main] server: %v", err)
	}
}
