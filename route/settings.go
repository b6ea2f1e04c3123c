package route

// Settings holds the per-mode speed (km/h) and cost (per km) tables. The
// engine reads a snapshot at the start of each calculation; edits between
// calculations take effect on the next one.
type Settings struct {
	Speeds map[TravelMode]float64 `json:"speeds"`
	Costs  map[TravelMode]float64 `json:"costs"`
}

// DefaultSpeeds returns the built-in km/h table.
func DefaultSpeeds() map[TravelMode]float64 {
	return map[TravelMode]float64{
		ModeDriving:       60,
		ModeWalking:       5,
		ModeCycling:       15,
		ModeTransit:       30,
		ModePlane:         850,
		ModeBoat:          30,
		ModeContainerShip: 25,
	}
}

// DefaultCosts returns the built-in per-km cost table.
func DefaultCosts() map[TravelMode]float64 {
	return map[TravelMode]float64{
		ModeDriving:       0.15,
		ModeWalking:       0,
		ModeCycling:       0,
		ModeTransit:       0.10,
		ModePlane:         0.25,
		ModeBoat:          0.20,
		ModeContainerShip: 0.05,
	}
}

// DefaultSettings returns both tables at their built-in values.
func DefaultSettings() Settings {
	return Settings{Speeds: DefaultSpeeds(), Costs: DefaultCosts()}
}

// Merge overlays s onto the defaults so every mode has an entry even when
// a stored record predates newer modes.
func (s Settings) Merge() Settings {
	out := DefaultSettings()
	for mode, v := range s.Speeds {
		if mode.Valid() && v > 0 {
			out.Speeds[mode] = v
		}
	}
	for mode, v := range s.Costs {
		if mode.Valid() && v >= 0 {
			out.Costs[mode] = v
		}
	}
	return out
}

// SpeedFor returns the km/h speed for a mode, falling back to the default
// table for missing or non-positive entries.
func (s Settings) SpeedFor(mode TravelMode) float64 {
	if v, ok := s.Speeds[mode]; ok && v > 0 {
		return v
	}
	return DefaultSpeeds()[mode]
}

// CostFor returns the per-km cost for a mode. A zero entry is a valid
// "free" configuration; only missing entries fall back.
func (s Settings) CostFor(mode TravelMode) float64 {
	if v, ok := s.Costs[mode]; ok && v >= 0 {
		return v
	}
	return DefaultCosts()[mode]
}
