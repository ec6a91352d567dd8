package meteomatics

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
)

// Synthetic temperature model constants, tuned for a subtropical city:
// a warm base plus small latitude/longitude gradients standing in for
// urban heat island variation.
const (
	syntheticBaseTemp = 22.0
	syntheticLatGain  = 30.0
	syntheticLonGain  = 20.0
	syntheticNoiseStd = 1.5
	syntheticMinTemp  = 15.0
	syntheticMaxTemp  = 35.0
)

// Synthetic generates plausible temperatures without API credentials. The
// noise term is derived from the coordinates, so repeated queries for the
// same location return the same value.
type Synthetic struct {
	// RefLat and RefLon anchor the gradient; temperatures rise moving
	// north-east of the reference point.
	RefLat float64
	RefLon float64
	clock  clockwork.Clock
}

// NewSynthetic creates a synthetic provider anchored at the given reference
// coordinates.
func NewSynthetic(refLat, refLon float64) *Synthetic {
	return &Synthetic{RefLat: refLat, RefLon: refLon, clock: clockwork.NewRealClock()}
}

// NewSyntheticWithClock creates a synthetic provider with an injected clock.
func NewSyntheticWithClock(refLat, refLon float64, clock clockwork.Clock) *Synthetic {
	return &Synthetic{RefLat: refLat, RefLon: refLon, clock: clock}
}

// Name implements Provider.
func (s *Synthetic) Name() string { return "synthetic" }

// Available implements Provider. Synthetic data needs no credentials.
func (s *Synthetic) Available() bool { return true }

// Temperature implements Provider.
func (s *Synthetic) Temperature(_ context.Context, lat, lon float64) (Reading, error) {
	return Reading{
		Lat:        lat,
		Lon:        lon,
		TempC:      s.temperatureAt(lat, lon),
		ObservedAt: s.now(),
	}, nil
}

// Temperatures implements Provider.
func (s *Synthetic) Temperatures(_ context.Context, coords []Coordinate) ([]Reading, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	now := s.now()
	readings := make([]Reading, len(coords))
	for i, co := range coords {
		readings[i] = Reading{
			Lat:        co.Lat,
			Lon:        co.Lon,
			TempC:      s.temperatureAt(co.Lat, co.Lon),
			ObservedAt: now,
		}
	}
	return readings, nil
}

func (s *Synthetic) temperatureAt(lat, lon float64) float64 {
	temp := syntheticBaseTemp +
		(lat-s.RefLat)*syntheticLatGain +
		(lon-s.RefLon)*syntheticLonGain +
		coordNoise(lat, lon)*syntheticNoiseStd
	return math.Max(syntheticMinTemp, math.Min(syntheticMaxTemp, temp))
}

func (s *Synthetic) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now().UTC()
}

// coordNoise returns a normally distributed value seeded from the
// coordinates, giving stable per-location jitter.
func coordNoise(lat, lon float64) float64 {
	h := fnv.New64a()
	var buf [16]byte
	putFloat(buf[:8], lat)
	putFloat(buf[8:], lon)
	_, _ = h.Write(buf[:])
	rng := rand.New(rand.NewSource(int64(h.Sum64()))) //nolint:gosec
	return rng.NormFloat64()
}

func putFloat(b []byte, f float64) {
	v := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
