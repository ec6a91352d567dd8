package sampler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/urbanclimate/lcz-planner/internal/geometry"
	"github.com/urbanclimate/lcz-planner/pkg/meteomatics"
)

// fakeProvider returns a fixed temperature per call and counts batches.
type fakeProvider struct {
	temp    float64
	calls   atomic.Int32
	failure error
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Available() bool { return true }

func (f *fakeProvider) Temperature(ctx context.Context, lat, lon float64) (meteomatics.Reading, error) {
	rs, err := f.Temperatures(ctx, []meteomatics.Coordinate{{Lat: lat, Lon: lon}})
	if err != nil {
		return meteomatics.Reading{}, err
	}
	return rs[0], nil
}

func (f *fakeProvider) Temperatures(_ context.Context, coords []meteomatics.Coordinate) ([]meteomatics.Reading, error) {
	f.calls.Add(1)
	if f.failure != nil {
		return nil, f.failure
	}
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	out := make([]meteomatics.Reading, len(coords))
	for i, co := range coords {
		out[i] = meteomatics.Reading{Lat: co.Lat, Lon: co.Lon, TempC: f.temp, ObservedAt: now}
	}
	return out, nil
}

func zoneBox(id, class string, west, south, east, north float64) geometry.Zone {
	return geometry.Zone{
		ID:    id,
		Class: class,
		Name:  "LCZ " + class,
		Polygon: geom.NewPolygonFlat(geom.XY, []float64{
			west, south, east, south, east, north, west, north, west, south,
		}, []int{10}),
	}
}

func testZones() *geometry.Collection {
	return geometry.NewCollection([]geometry.Zone{
		zoneBox("zone-0", "2", -51.98, -29.48, -51.96, -29.46),
		zoneBox("zone-1", "11", -51.96, -29.48, -51.94, -29.46),
	})
}

func TestSampler_Run(t *testing.T) {
	provider := &fakeProvider{temp: 24.5}
	s := New(provider, Config{PointsPerZone: 3, Concurrency: 2, Seed: 42})

	samples, err := s.Run(context.Background(), testZones())
	require.NoError(t, err)
	require.NotEmpty(t, samples)

	seenZones := make(map[string]bool)
	for _, smp := range samples {
		assert.NotEmpty(t, smp.ID)
		assert.InDelta(t, 24.5, smp.TempC, 1e-9)
		assert.Equal(t, "fake", smp.Source)
		assert.False(t, smp.ObservedAt.IsZero())
		seenZones[smp.ZoneID] = true
	}
	assert.Len(t, seenZones, 2, "every zone must be sampled")
}

func TestSampler_Run_ZoneAttribution(t *testing.T) {
	s := New(&fakeProvider{temp: 20}, Config{PointsPerZone: 2, Concurrency: 1, Seed: 7})

	samples, err := s.Run(context.Background(), testZones())
	require.NoError(t, err)

	col := testZones()
	for _, smp := range samples {
		class, ok := col.ClassAt(smp.Lat, smp.Lon)
		require.True(t, ok, "sample point must lie inside a zone")
		assert.Equal(t, smp.Class, class)
	}
}

func TestSampler_Run_ProviderError(t *testing.T) {
	provider := &fakeProvider{failure: eris.New("upstream down")}
	s := New(provider, Config{PointsPerZone: 2, Concurrency: 2})

	_, err := s.Run(context.Background(), testZones())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestSampler_Run_EmptyCollection(t *testing.T) {
	s := New(&fakeProvider{}, Config{})

	_, err := s.Run(context.Background(), geometry.NewCollection(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no zones")
}

func TestGridCoordinates(t *testing.T) {
	b := geometry.Bounds{West: -52.0, South: -29.5, East: -51.9, North: -29.4}

	coords := GridCoordinates(b, 0.01, 200)
	require.NotEmpty(t, coords)
	assert.LessOrEqual(t, len(coords), 200)

	for _, co := range coords {
		assert.GreaterOrEqual(t, co.Lat, b.South)
		assert.LessOrEqual(t, co.Lat, b.North)
		assert.GreaterOrEqual(t, co.Lon, b.West)
		assert.LessOrEqual(t, co.Lon, b.East)
	}
}

func TestGridCoordinates_CapsPointCount(t *testing.T) {
	tests := []struct {
		name string
		b    geometry.Bounds
	}{
		{"square", geometry.Bounds{West: 0, South: 0, East: 1, North: 1}},
		// 101 rows x 2 cols: a stepped axis that does not divide evenly,
		// so the cap must account for the partial last stride.
		{"tall narrow", geometry.Bounds{West: 0, South: 0, East: 0.001, North: 0.1}},
		{"wide flat", geometry.Bounds{West: 0, South: 0, East: 0.1, North: 0.001}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coords := GridCoordinates(tt.b, 0.001, 100)
			assert.NotEmpty(t, coords)
			assert.LessOrEqual(t, len(coords), 100)
		})
	}
}

func TestGridCoordinates_DegenerateInput(t *testing.T) {
	assert.Nil(t, GridCoordinates(geometry.Bounds{West: 1, East: 0}, 0.01, 100))
	assert.Nil(t, GridCoordinates(geometry.Bounds{West: 0, East: 1, South: 0, North: 1}, 0, 100))
}
