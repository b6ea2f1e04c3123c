package route

import (
	"fmt"
	"log"
	"math"
	"sync"

	"mapchat.dev/geo"
)

// State is the lifecycle of a single calculation.
type State string

const (
	StateIdle        State = "idle"
	StateCalculating State = "calculating"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
)

// Engine computes routes. Calculations are serialized internally; a second
// Calculate blocks until the one in flight finishes. Settings are passed per
// call so edits between calculations always take effect.
type Engine struct {
	Backend *OSRM

	// Heuristic knobs. The tolerance band and sea point density are product
	// tuning values, kept adjustable rather than hard-coded.
	DriveTolerance float64
	AirPoints      int
	AirLegPoints   int
	SeaSegmentKm   float64

	calcMu sync.Mutex

	mu    sync.Mutex
	state State
}

// NewEngine returns an engine with the default heuristics.
func NewEngine(backend *OSRM) *Engine {
	return &Engine{
		Backend:        backend,
		DriveTolerance: 0.2,
		AirPoints:      20,
		AirLegPoints:   10,
		SeaSegmentKm:   500,
		state:          StateIdle,
	}
}

// State reports the lifecycle state of the most recent calculation.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Calculate computes a route for the request. Only ground modes can fail
// structurally; air and sea routes are computed locally.
func (e *Engine) Calculate(req Request, settings Settings) (*Result, error) {
	e.calcMu.Lock()
	defer e.calcMu.Unlock()

	if !req.Mode.Valid() {
		return nil, fmt.Errorf("unknown travel mode %q", req.Mode)
	}
	if !geo.IsValid(req.Origin.Lat, req.Origin.Lng) {
		return nil, fmt.Errorf("invalid origin %f,%f", req.Origin.Lat, req.Origin.Lng)
	}
	if !geo.IsValid(req.Destination.Lat, req.Destination.Lng) {
		return nil, fmt.Errorf("invalid destination %f,%f", req.Destination.Lat, req.Destination.Lng)
	}

	e.setState(StateCalculating)

	var res *Result
	var err error
	if req.Mode.Ground() {
		res, err = e.groundRoute(req, settings)
	} else {
		res = e.directRoute(req, settings)
	}

	if err != nil {
		e.setState(StateFailed)
		log.Printf("[route] %s calculation failed: %v", req.Mode, err)
		return nil, err
	}
	e.setState(StateSucceeded)
	return res, nil
}

// reconcile picks the duration for one distance at any granularity.
// Walking, cycling and transit always use the configured speed; backend
// durations for those modes are unreliable. Driving keeps the backend value
// unless it strays outside the tolerance band around the computed one.
func (e *Engine) reconcile(mode TravelMode, distanceMeters, backendSeconds, speedKmh float64) float64 {
	computed := math.Round(distanceMeters / 1000 / speedKmh * 3600)
	if mode != ModeDriving {
		return computed
	}
	if computed == 0 {
		return backendSeconds
	}
	ratio := backendSeconds / computed
	if ratio < 1-e.DriveTolerance || ratio > 1+e.DriveTolerance {
		return computed
	}
	return backendSeconds
}

func (e *Engine) groundRoute(req Request, settings Settings) (*Result, error) {
	points := make([]geo.LatLng, 0, len(req.Waypoints)+2)
	points = append(points, req.Origin)
	for _, wp := range req.Waypoints {
		points = append(points, wp.LatLng)
	}
	points = append(points, req.Destination)

	r, err := e.Backend.Route(req.Mode, points)
	if err != nil {
		return nil, err
	}

	speed := settings.SpeedFor(req.Mode)
	duration := e.reconcile(req.Mode, r.Distance, r.Duration, speed)

	var steps []Step
	legCount := len(r.Legs)
	for legIndex, leg := range r.Legs {
		if legCount > 1 {
			legDuration := e.reconcile(req.Mode, leg.Distance, leg.Duration, speed)
			label := segmentLabel(legIndex, legCount, len(req.Waypoints))
			steps = append(steps, Step{
				Instruction: fmt.Sprintf("%s (%s • %s)",
					label, FormatDistance(leg.Distance), FormatDuration(legDuration)),
				DistanceMeters:  leg.Distance,
				DurationSeconds: legDuration,
				SegmentIndex:    legIndex,
				IsSegmentStart:  true,
				SegmentLabel:    label,
			})
		}
		for _, s := range leg.Steps {
			steps = append(steps, Step{
				Instruction:     instructionFor(s, legIndex, legCount),
				DistanceMeters:  s.Distance,
				DurationSeconds: e.reconcile(req.Mode, s.Distance, s.Duration, speed),
				Coordinates:     s.Geometry.latLngs(),
				SegmentIndex:    legIndex,
			})
		}
	}

	return &Result{
		Distance:        FormatDistance(r.Distance),
		Duration:        FormatDuration(duration),
		Cost:            FormatCost(r.Distance / 1000 * settings.CostFor(req.Mode)),
		Steps:           steps,
		Geometry:        r.Geometry.latLngs(),
		DistanceMeters:  r.Distance,
		DurationSeconds: duration,
	}, nil
}

// segmentLabel names the leg between two stops for the segment header.
func segmentLabel(legIndex, legCount, waypointCount int) string {
	switch {
	case legIndex == 0:
		if waypointCount > 0 {
			return "Start → Via 1"
		}
		return "Start → End"
	case legIndex == legCount-1:
		return fmt.Sprintf("Via %d → End", legIndex)
	default:
		return fmt.Sprintf("Via %d → Via %d", legIndex, legIndex+1)
	}
}

// directRoute computes plane and sea routes locally from interpolated
// geometry. Distance is the haversine sum over consecutive points so paths
// chained through manual waypoints reflect the actual length travelled.
func (e *Engine) directRoute(req Request, settings Settings) *Result {
	path := e.interpolate(req)

	distanceKm := geo.PathLengthKm(path)
	distanceMeters := distanceKm * 1000
	duration := distanceKm / settings.SpeedFor(req.Mode) * 3600

	var steps []Step
	if req.Mode == ModePlane {
		steps = append(steps, Step{
			Instruction: fmt.Sprintf("%s Depart by %s - following great circle route",
				req.Mode.Emoji(), req.Mode.Label()),
			DistanceMeters:  distanceMeters,
			DurationSeconds: duration,
			Coordinates:     path,
		})
	} else {
		steps = append(steps, Step{
			Instruction: fmt.Sprintf("%s Depart by %s - following maritime route (avoiding land)",
				req.Mode.Emoji(), req.Mode.Label()),
			DistanceMeters:  distanceMeters,
			DurationSeconds: duration,
			Coordinates:     path,
		})
		if n := len(path) - 2; n > 0 {
			plural := ""
			if n > 1 {
				plural = "s"
			}
			steps = append(steps, Step{
				Instruction: fmt.Sprintf("🗺️ Route passes through %d waypoint%s to avoid landmasses", n, plural),
			})
		}
	}
	steps = append(steps, Step{
		Instruction: "🏁 Arrive at destination",
		Coordinates: []geo.LatLng{req.Destination},
	})

	return &Result{
		Distance:        FormatDistance(distanceMeters),
		Duration:        FormatDuration(duration),
		Cost:            FormatCost(distanceKm * settings.CostFor(req.Mode)),
		Steps:           steps,
		Geometry:        path,
		DistanceMeters:  distanceMeters,
		DurationSeconds: duration,
	}
}

// interpolate builds the air or sea path. With manual waypoints the path is
// chained leg by leg, dropping each leg's duplicated first point.
func (e *Engine) interpolate(req Request) []geo.LatLng {
	stops := make([]geo.LatLng, 0, len(req.Waypoints)+2)
	stops = append(stops, req.Origin)
	for _, wp := range req.Waypoints {
		stops = append(stops, wp.LatLng)
	}
	stops = append(stops, req.Destination)

	if req.Mode == ModePlane && len(stops) == 2 {
		return geo.GreatCircle(req.Origin, req.Destination, e.AirPoints)
	}

	legs := make([][]geo.LatLng, 0, len(stops)-1)
	for i := 0; i < len(stops)-1; i++ {
		if req.Mode == ModePlane {
			legs = append(legs, geo.GreatCircle(stops[i], stops[i+1], e.AirLegPoints))
		} else {
			legs = append(legs, geo.SeaLine(stops[i], stops[i+1], e.SeaSegmentKm))
		}
	}
	return geo.ChainLegs(legs...)
}
