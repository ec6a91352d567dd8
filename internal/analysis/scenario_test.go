package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/urbanclimate/lcz-planner/internal/geometry"
	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

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

func testSimulator(t *testing.T) *Simulator {
	t.Helper()

	col := geometry.NewCollection([]geometry.Zone{
		zoneBox("zone-0", "2", -51.98, -29.48, -51.96, -29.46),
		zoneBox("zone-1", "11", -51.96, -29.48, -51.94, -29.46),
		zoneBox("zone-2", "14", -51.98, -29.46, -51.96, -29.44),
	})

	stats := Stats{
		Classes: []ClassStats{
			{Class: "2", MeanTemp: 31.0, Count: 5},
			{Class: "14", MeanTemp: 28.0, Count: 5},
			{Class: "11", MeanTemp: 26.0, Count: 5},
		},
		BaselineMean: 28.0,
		HasBaseline:  true,
	}
	return NewSimulator(stats, col, lcz.DefaultRegistry())
}

func TestSimulator_ZoneChange(t *testing.T) {
	sim := testSimulator(t)

	change, err := sim.ZoneChange("zone-0", "A")
	require.NoError(t, err)

	assert.Equal(t, "2", change.OldClass)
	assert.Equal(t, "11", change.NewClass, "letter code must canonicalize")
	assert.InDelta(t, 31.0, change.OldTemp, 1e-9)
	assert.InDelta(t, 26.0, change.NewTemp, 1e-9)
	assert.InDelta(t, -5.0, change.TempChange, 1e-9)
	assert.Greater(t, change.AreaKM2, 0.0)
}

func TestSimulator_ZoneChange_UnknownZone(t *testing.T) {
	_, err := testSimulator(t).ZoneChange("zone-99", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown zone")
}

func TestSimulator_Convert_Greening(t *testing.T) {
	sim := testSimulator(t)

	res, err := sim.Convert(ScenarioGreening, []string{"2"}, "A", 0.4)
	require.NoError(t, err)

	assert.Equal(t, ScenarioGreening, res.Type)
	assert.Equal(t, []string{"2"}, res.FromClasses)
	assert.Equal(t, "11", res.TargetClass)
	assert.Equal(t, 1, res.ZonesAffected)
	// (26 - 31) * 0.4
	assert.InDelta(t, -2.0, res.ExpectedChange, 1e-9)
	assert.Equal(t, "strong cooling", res.Impact)
	assert.Greater(t, res.AreaConvertedKM2, 0.0)
}

func TestSimulator_Convert_Urbanization(t *testing.T) {
	sim := testSimulator(t)

	res, err := sim.Convert(ScenarioUrbanization, []string{"11", "14"}, "2", 0.5)
	require.NoError(t, err)

	// avg(26, 28) = 27; (31 - 27) * 0.5 = 2.0
	assert.InDelta(t, 27.0, res.AvgFromTemp, 1e-9)
	assert.InDelta(t, 2.0, res.ExpectedChange, 1e-9)
	assert.Equal(t, 2, res.ZonesAffected)
	assert.Equal(t, "warming", res.Impact)
}

func TestSimulator_Convert_Validation(t *testing.T) {
	sim := testSimulator(t)

	_, err := sim.Convert(ScenarioGreening, []string{"2"}, "11", 0)
	assert.Error(t, err, "zero conversion rate")

	_, err = sim.Convert(ScenarioGreening, []string{"2"}, "nope", 0.5)
	assert.Error(t, err, "unknown target class")

	_, err = sim.Convert(ScenarioGreening, []string{"10"}, "11", 0.5)
	assert.Error(t, err, "no zones in source classes")
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		delta float64
		want  string
	}{
		{3.0, "strong warming"},
		{1.0, "warming"},
		{0.0, "neutral"},
		{-1.0, "cooling"},
		{-3.0, "strong cooling"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Interpret(tt.delta))
	}
}

func TestLoadPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  - name: test-greening
    type: greening
    from_classes: ["2", "3"]
    target_class: "A"
    conversion_rate: 0.25
`), 0o644))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 1)

	assert.Equal(t, "test-greening", presets[0].Name)
	assert.Equal(t, ScenarioGreening, presets[0].Type)
	assert.Equal(t, []string{"2", "3"}, presets[0].FromClasses)
	assert.InDelta(t, 0.25, presets[0].ConversionRate, 1e-9)
}

func TestLoadPresets_InvalidType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  - name: bad
    type: terraforming
    from_classes: ["2"]
    target_class: "A"
    conversion_rate: 0.5
`), 0o644))

	_, err := LoadPresets(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestRunPresets_SkipsUnsupported(t *testing.T) {
	sim := testSimulator(t)

	presets := []Preset{
		{Name: "ok", Type: ScenarioGreening, FromClasses: []string{"2"}, TargetClass: "11", ConversionRate: 0.3},
		// Class 10 has no zones in the test collection.
		{Name: "skipped", Type: ScenarioGreening, FromClasses: []string{"10"}, TargetClass: "11", ConversionRate: 0.3},
	}

	results := sim.RunPresets(presets)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"2"}, results[0].FromClasses)
}

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	require.Len(t, presets, 4)
	for _, p := range presets {
		assert.NotEmpty(t, p.Name)
		assert.Contains(t, []string{ScenarioUrbanization, ScenarioGreening}, p.Type)
		assert.Greater(t, p.ConversionRate, 0.0)
		assert.LessOrEqual(t, p.ConversionRate, 1.0)
	}
}
