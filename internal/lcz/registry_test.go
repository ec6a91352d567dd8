package lcz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Completeness(t *testing.T) {
	reg := DefaultRegistry()
	require.Equal(t, 17, reg.Len())

	for _, c := range reg.All() {
		got, err := reg.Lookup(c.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, got.Name, "class %s must have a name", c.ID)
		assert.NotEmpty(t, got.Color, "class %s must have a color", c.ID)
		assert.False(t, math.IsNaN(got.ThermalOffset) || math.IsInf(got.ThermalOffset, 0),
			"class %s must have a finite offset", c.ID)
	}
}

func TestDefaultRegistry_SingleBaseline(t *testing.T) {
	reg := DefaultRegistry()

	var zeroOffset []string
	for _, c := range reg.All() {
		if c.ThermalOffset == 0.0 {
			zeroOffset = append(zeroOffset, c.ID)
		}
	}
	require.Equal(t, []string{BaselineClassID}, zeroOffset,
		"exactly one class serves as the 0.0 baseline")

	baseline, err := reg.Lookup(BaselineClassID)
	require.NoError(t, err)
	assert.Equal(t, "Low Plants", baseline.Name)
	assert.Equal(t, CategoryNatural, baseline.Category)
}

func TestDefaultRegistry_Categories(t *testing.T) {
	reg := DefaultRegistry()
	for _, c := range reg.All() {
		switch c.ID {
		case "1", "2", "3", "4", "5", "6", "7", "8", "9", "10":
			assert.Equal(t, CategoryBuilt, c.Category, "class %s", c.ID)
		default:
			assert.Equal(t, CategoryNatural, c.Category, "class %s", c.ID)
		}
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := DefaultRegistry()

	_, err := reg.Lookup("99")
	require.Error(t, err)
	assert.True(t, IsUnknownZoneClass(err))

	var uz *UnknownZoneClassError
	require.ErrorAs(t, err, &uz)
	assert.Equal(t, "99", uz.ID)
	assert.Contains(t, err.Error(), `"99"`)
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		classes []ZoneClass
	}{
		{
			name:    "empty id",
			classes: []ZoneClass{{ID: "", Name: "X", ThermalOffset: 1.0}},
		},
		{
			name:    "empty name",
			classes: []ZoneClass{{ID: "1", Name: "", ThermalOffset: 1.0}},
		},
		{
			name:    "NaN offset",
			classes: []ZoneClass{{ID: "1", Name: "X", ThermalOffset: math.NaN()}},
		},
		{
			name:    "infinite offset",
			classes: []ZoneClass{{ID: "1", Name: "X", ThermalOffset: math.Inf(1)}},
		},
		{
			name: "duplicate id",
			classes: []ZoneClass{
				{ID: "1", Name: "X", ThermalOffset: 1.0},
				{ID: "1", Name: "Y", ThermalOffset: 2.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.classes)
			assert.Error(t, err)
		})
	}
}

func TestNewRegistry_InjectedTable(t *testing.T) {
	// Tests can substitute alternate tables without process-wide effects.
	reg, err := NewRegistry([]ZoneClass{
		{ID: "X", Name: "Test Built", Category: CategoryBuilt, ThermalOffset: 3.0},
		{ID: "Y", Name: "Test Natural", Category: CategoryNatural, ThermalOffset: -1.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	assert.True(t, reg.Contains("X"))
	assert.False(t, reg.Contains("1"))
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1"},
		{"10", "10"},
		{"A", "11"},
		{"a", "11"},
		{"D", "14"},
		{"G", "17"},
		{" B ", "12"},
		{"17", "17"},
		{"Z", "Z"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	reg := DefaultRegistry()
	all := reg.All()
	all[0].Name = "mutated"

	fresh, err := reg.Lookup(all[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", fresh.Name)
}
