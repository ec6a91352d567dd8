// Package meteomatics fetches 2 m air temperatures from the Meteomatics
// weather API, with a deterministic synthetic provider as an offline
// fallback.
package meteomatics

import (
	"context"
	"time"
)

// TemperatureParameter is the Meteomatics parameter for 2 m air temperature
// in degrees Celsius.
const TemperatureParameter = "t_2m:C"

// Coordinate is a WGS84 query location.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Reading is one observed (or synthesized) temperature at a location.
type Reading struct {
	Lat        float64
	Lon        float64
	TempC      float64
	ObservedAt time.Time
}

// Provider supplies temperatures for query locations.
type Provider interface {
	// Name identifies the provider in logs and stored samples.
	Name() string

	// Available reports whether the provider can serve requests (e.g.
	// credentials are configured).
	Available() bool

	// Temperature fetches the current temperature at a single location.
	Temperature(ctx context.Context, lat, lon float64) (Reading, error)

	// Temperatures fetches temperatures for a batch of locations. The
	// result preserves input order.
	Temperatures(ctx context.Context, coords []Coordinate) ([]Reading, error)
}
