// Package sampler collects temperature readings for zone sampling points
// from a weather provider, fanning batches out concurrently.
package sampler

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/urbanclimate/lcz-planner/internal/geometry"
	"github.com/urbanclimate/lcz-planner/pkg/meteomatics"
)

// batchSize is how many points one provider call carries. The Meteomatics
// client chunks internally anyway; keeping batches small here spreads work
// across the errgroup.
const batchSize = 25

// Sample is one temperature observation attributed to a zone.
type Sample struct {
	ID         string    `json:"id"`
	ZoneID     string    `json:"zone_id"`
	Class      string    `json:"lcz_class"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	TempC      float64   `json:"temperature"`
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observed_at"`
}

// Config controls sampling density and parallelism.
type Config struct {
	PointsPerZone int
	Concurrency   int
	// Seed pins the rejection-sampling RNG; 0 means non-deterministic.
	Seed int64
}

// Sampler draws sampling points from a zone collection and resolves their
// temperatures through a provider.
type Sampler struct {
	provider meteomatics.Provider
	cfg      Config
}

// New creates a Sampler. Zero config fields fall back to sensible values.
func New(provider meteomatics.Provider, cfg Config) *Sampler {
	if cfg.PointsPerZone < 1 {
		cfg.PointsPerZone = 5
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 8
	}
	return &Sampler{provider: provider, cfg: cfg}
}

// Run samples every zone in the collection and returns the attributed
// readings. Point order follows the collection's zone order.
func (s *Sampler) Run(ctx context.Context, col *geometry.Collection) ([]Sample, error) {
	if col == nil || col.Len() == 0 {
		return nil, eris.New("sampler: no zones to sample")
	}

	var rng *rand.Rand
	if s.cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(s.cfg.Seed)) //nolint:gosec
	}
	points := col.SamplingPoints(s.cfg.PointsPerZone, rng)
	if len(points) == 0 {
		return nil, eris.New("sampler: no sampling points generated")
	}

	zap.L().Info("sampler: resolving temperatures",
		zap.Int("zones", col.Len()),
		zap.Int("points", len(points)),
		zap.String("provider", s.provider.Name()),
	)

	readings := make([]meteomatics.Reading, len(points))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for start := 0; start < len(points); start += batchSize {
		end := min(start+batchSize, len(points))
		g.Go(func() error {
			coords := make([]meteomatics.Coordinate, end-start)
			for i, p := range points[start:end] {
				coords[i] = meteomatics.Coordinate{Lat: p.Lat, Lon: p.Lon}
			}
			batch, err := s.provider.Temperatures(gCtx, coords)
			if err != nil {
				return eris.Wrapf(err, "sampler: batch %d-%d", start, end)
			}
			if len(batch) != len(coords) {
				return eris.Errorf("sampler: batch %d-%d returned %d readings for %d points",
					start, end, len(batch), len(coords))
			}
			copy(readings[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	samples := make([]Sample, len(points))
	for i, p := range points {
		samples[i] = Sample{
			ID:         uuid.NewString(),
			ZoneID:     p.ZoneID,
			Class:      p.Class,
			Lat:        p.Lat,
			Lon:        p.Lon,
			TempC:      readings[i].TempC,
			Source:     s.provider.Name(),
			ObservedAt: readings[i].ObservedAt,
		}
	}
	return samples, nil
}

// GridCoordinates lays a regular sampling grid over the bounds at the given
// resolution in degrees, capped at maxPoints (rows x cols are thinned
// evenly when over the cap).
func GridCoordinates(b geometry.Bounds, resolution float64, maxPoints int) []meteomatics.Coordinate {
	if resolution <= 0 || b.East <= b.West || b.North <= b.South {
		return nil
	}
	if maxPoints < 1 {
		maxPoints = 100
	}

	rows := int((b.North-b.South)/resolution) + 1
	cols := int((b.East-b.West)/resolution) + 1

	// The generation loops emit ceil(rows/step) points per axis, so the
	// thinning estimate must round up too or the cap can be exceeded.
	rowStep, colStep := 1, 1
	for ceilDiv(rows, rowStep)*ceilDiv(cols, colStep) > maxPoints {
		if ceilDiv(rows, rowStep) >= ceilDiv(cols, colStep) {
			rowStep++
		} else {
			colStep++
		}
	}

	var coords []meteomatics.Coordinate
	for r := 0; r < rows; r += rowStep {
		for c := 0; c < cols; c += colStep {
			coords = append(coords, meteomatics.Coordinate{
				Lat: b.South + float64(r)*resolution,
				Lon: b.West + float64(c)*resolution,
			})
		}
	}
	return coords
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
