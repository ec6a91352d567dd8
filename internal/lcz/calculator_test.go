package lcz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_DocumentedScenarios(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())

	tests := []struct {
		name      string
		baseTemp  float64
		from, to  string
		wantDelta float64
		wantTemp  float64
	}{
		{
			name:     "heavy industry to dense trees",
			baseTemp: 32.0, from: "10", to: "11",
			wantDelta: -4.1, wantTemp: 27.9,
		},
		{
			name:     "compact low-rise to dense trees",
			baseTemp: 28.0, from: "3", to: "11",
			wantDelta: -3.8, wantTemp: 24.2,
		},
		{
			name:     "low plants to compact mid-rise",
			baseTemp: 20.0, from: "14", to: "2",
			wantDelta: 2.8, wantTemp: 22.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := calc.Compute(tt.baseTemp, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantDelta, res.Delta, 1e-9)
			assert.InDelta(t, tt.wantTemp, res.NewTemperature, 1e-9)
			assert.Equal(t, tt.baseTemp, res.BaseTemperature)
			assert.Equal(t, tt.from, res.FromClass)
			assert.Equal(t, tt.to, res.ToClass)
		})
	}
}

func TestCompute_DeltaIndependentOfBaseTemperature(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())

	for _, base := range []float64{-40.0, 0.0, 15.5, 28.0, 45.0} {
		res, err := calc.Compute(base, "3", "11")
		require.NoError(t, err)
		assert.InDelta(t, -3.8, res.Delta, 1e-9, "base %v", base)
		assert.Equal(t, base+res.Delta, res.NewTemperature)
	}
}

func TestCompute_Identity(t *testing.T) {
	reg := DefaultRegistry()
	calc := NewCalculator(reg)

	// Same stored constant on both sides: delta is exactly zero, no drift.
	for _, c := range reg.All() {
		res, err := calc.Compute(21.7, c.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Delta, "class %s", c.ID)
		assert.Equal(t, 21.7, res.NewTemperature, "class %s", c.ID)
	}
}

func TestCompute_Symmetry(t *testing.T) {
	reg := DefaultRegistry()
	calc := NewCalculator(reg)

	classes := reg.All()
	for _, a := range classes {
		for _, b := range classes {
			fwd, err := calc.Compute(25.0, a.ID, b.ID)
			require.NoError(t, err)
			rev, err := calc.Compute(25.0, b.ID, a.ID)
			require.NoError(t, err)
			// IEEE-754 subtraction is exactly antisymmetric.
			assert.Equal(t, fwd.Delta, -rev.Delta, "%s <-> %s", a.ID, b.ID)
		}
	}
}

func TestCompute_Additivity(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())

	// Offsets share a single reference scale, so deltas compose.
	triples := [][3]string{
		{"1", "14", "17"},
		{"10", "11", "3"},
		{"7", "15", "12"},
	}
	for _, tr := range triples {
		ab, err := calc.Compute(0, tr[0], tr[1])
		require.NoError(t, err)
		bc, err := calc.Compute(0, tr[1], tr[2])
		require.NoError(t, err)
		ac, err := calc.Compute(0, tr[0], tr[2])
		require.NoError(t, err)
		assert.InDelta(t, ac.Delta, ab.Delta+bc.Delta, 1e-12,
			"%s -> %s -> %s", tr[0], tr[1], tr[2])
	}
}

func TestCompute_Idempotent(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())

	first, err := calc.Compute(30.25, "2", "17")
	require.NoError(t, err)
	second, err := calc.Compute(30.25, "2", "17")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompute_UnknownClass(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())

	tests := []struct {
		name     string
		from, to string
		wantID   string
	}{
		{name: "unknown from", from: "99", to: "11", wantID: "99"},
		{name: "unknown to", from: "3", to: "42", wantID: "42"},
		{name: "letter code not normalized by caller", from: "A", to: "3", wantID: "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := calc.Compute(20.0, tt.from, tt.to)
			require.Error(t, err)
			assert.True(t, IsUnknownZoneClass(err))

			var uz *UnknownZoneClassError
			require.ErrorAs(t, err, &uz)
			assert.Equal(t, tt.wantID, uz.ID)
			assert.Zero(t, res, "no partial result on failure")
		})
	}
}

func TestCompute_Explanation(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())

	cooling, err := calc.Compute(32.0, "10", "11")
	require.NoError(t, err)
	assert.Contains(t, cooling.Explanation, "Converting from LCZ 10 (Heavy Industry) to LCZ 11 (Dense Trees)")
	assert.Contains(t, cooling.Explanation, "decrease the temperature by 4.10°C")
	assert.Contains(t, cooling.Explanation, "cooling effect")

	warming, err := calc.Compute(20.0, "14", "1")
	require.NoError(t, err)
	assert.Contains(t, warming.Explanation, "increase the temperature by 2.50°C")
	assert.Contains(t, warming.Explanation, "warming effect")

	neutral, err := calc.Compute(20.0, "5", "5")
	require.NoError(t, err)
	assert.Contains(t, neutral.Explanation, "leave the temperature unchanged")
}

func TestCompute_InjectedRegistry(t *testing.T) {
	reg, err := NewRegistry([]ZoneClass{
		{ID: "hot", Name: "Hot", Category: CategoryBuilt, ThermalOffset: 5.0},
		{ID: "cold", Name: "Cold", Category: CategoryNatural, ThermalOffset: -5.0},
	})
	require.NoError(t, err)

	res, err := NewCalculator(reg).Compute(10.0, "hot", "cold")
	require.NoError(t, err)
	assert.Equal(t, -10.0, res.Delta)
	assert.Equal(t, 0.0, res.NewTemperature)
}
