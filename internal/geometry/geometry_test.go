package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

// square builds a zone covering [west,east]x[south,north].
func square(id, class string, west, south, east, north float64) Zone {
	return Zone{
		ID:      id,
		Class:   class,
		Name:    "LCZ " + class,
		Polygon: boxPolygon(west, south, east, north),
	}
}

func testCollection() *Collection {
	return NewCollection([]Zone{
		square("zone-0", "2", -51.98, -29.48, -51.96, -29.46),
		square("zone-1", "11", -51.96, -29.48, -51.94, -29.46),
		square("zone-2", "17", -51.98, -29.46, -51.96, -29.44),
	})
}

func TestCollection_Bounds(t *testing.T) {
	col := testCollection()

	b, ok := col.Bounds()
	require.True(t, ok)
	assert.InDelta(t, -51.98, b.West, 1e-9)
	assert.InDelta(t, -29.48, b.South, 1e-9)
	assert.InDelta(t, -51.94, b.East, 1e-9)
	assert.InDelta(t, -29.44, b.North, 1e-9)

	lat, lon := b.Center()
	assert.InDelta(t, -29.46, lat, 1e-9)
	assert.InDelta(t, -51.96, lon, 1e-9)
}

func TestCollection_BoundsEmpty(t *testing.T) {
	_, ok := NewCollection(nil).Bounds()
	assert.False(t, ok)
}

func TestCollection_ClassAt(t *testing.T) {
	col := testCollection()

	tests := []struct {
		name      string
		lat, lon  float64
		wantClass string
		wantOK    bool
	}{
		{name: "inside built zone", lat: -29.47, lon: -51.97, wantClass: "2", wantOK: true},
		{name: "inside tree zone", lat: -29.47, lon: -51.95, wantClass: "11", wantOK: true},
		{name: "inside water zone", lat: -29.45, lon: -51.97, wantClass: "17", wantOK: true},
		{name: "outside all zones", lat: -29.40, lon: -51.90, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, ok := col.ClassAt(tt.lat, tt.lon)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantClass, class)
			}
		})
	}
}

func TestCollection_DerivedCentroidAndArea(t *testing.T) {
	col := testCollection()

	z, ok := col.Zone("zone-0")
	require.True(t, ok)
	assert.InDelta(t, -29.47, z.CentroidLat, 1e-9)
	assert.InDelta(t, -51.97, z.CentroidLon, 1e-9)
	// 0.02 x 0.02 degrees at ~29.5S is roughly 4.3 km^2.
	assert.InDelta(t, 4.3, z.AreaKM2, 0.3)
}

func TestContainsPoint_Hole(t *testing.T) {
	poly := geom.NewPolygon(geom.XY)
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		0, 0, 10, 0, 10, 10, 0, 10, 0, 0,
	})))
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		4, 4, 6, 4, 6, 6, 4, 6, 4, 4,
	})))

	assert.True(t, containsPoint(poly, 2, 2))
	assert.False(t, containsPoint(poly, 5, 5), "point in hole")
	assert.False(t, containsPoint(poly, 12, 5))
}

func TestCollection_Classes(t *testing.T) {
	col := NewCollection([]Zone{
		square("a", "2", 0, 0, 1, 1),
		square("b", "2", 1, 0, 2, 1),
		square("c", "11", 2, 0, 3, 1),
	})
	assert.Equal(t, []string{"2", "11"}, col.Classes())
}

func TestCollection_FeatureCollection(t *testing.T) {
	fc := testCollection().FeatureCollection()
	require.Len(t, fc.Features, 3)

	feat := fc.Features[0]
	assert.Equal(t, "zone-0", feat.ID)
	assert.Equal(t, "2", feat.Properties["lcz_class"])
	assert.NotNil(t, feat.Geometry)
	assert.Greater(t, feat.Properties["area_km2"].(float64), 0.0)
}

func TestSamplingPoints(t *testing.T) {
	col := testCollection()
	rng := rand.New(rand.NewSource(42))

	points := col.SamplingPoints(5, rng)
	require.GreaterOrEqual(t, len(points), col.Len(), "at least one point per zone")

	for _, p := range points {
		z, ok := col.Zone(p.ZoneID)
		require.True(t, ok)
		assert.Equal(t, z.Class, p.Class)
		assert.True(t, containsPoint(z.Polygon, p.Lon, p.Lat),
			"point (%v,%v) must lie inside its zone %s", p.Lat, p.Lon, p.ZoneID)
	}
}

func TestSamplingPoints_Deterministic(t *testing.T) {
	col := testCollection()

	a := col.SamplingPoints(4, rand.New(rand.NewSource(7)))
	b := col.SamplingPoints(4, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load("zones.gpkg", lcz.DefaultRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported zone file format")
}
