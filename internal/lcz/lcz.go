// Package lcz defines the Local Climate Zone classification table and the
// scenario calculator that predicts the thermal effect of reclassifying a
// zone from one LCZ class to another.
package lcz

import "strings"

// Category distinguishes built from natural land cover classes.
type Category string

// Zone class categories.
const (
	CategoryBuilt   Category = "built"
	CategoryNatural Category = "natural"
)

// ZoneClass describes one LCZ category. ThermalOffset is the empirical
// temperature delta in degrees Celsius relative to the baseline class
// (Low Plants, offset 0.0), after Stewart & Oke (2012).
type ZoneClass struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	Color         string   `json:"color"`
	ThermalOffset float64  `json:"thermal_offset"`
}

// BaselineClassID is the reference class whose offset is 0.0 by definition.
const BaselineClassID = "14"

// letterCodes maps the WUDAPT letter scheme for natural classes onto the
// canonical numeric codes. Source KML files label natural zones A..G.
var letterCodes = map[string]string{
	"A": "11",
	"B": "12",
	"C": "13",
	"D": "14",
	"E": "15",
	"F": "16",
	"G": "17",
}

// Canonical normalizes an LCZ class code to its canonical numeric form.
// Letter codes A..G become 11..17; anything else is returned trimmed and
// upper-cased as-is. Canonical does not validate the code against the
// registry.
func Canonical(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if numeric, ok := letterCodes[c]; ok {
		return numeric
	}
	return c
}

// defaultClasses is the standard 17-class LCZ table. Offsets are fixed
// empirical constants and are never recomputed from observations.
var defaultClasses = []ZoneClass{
	{ID: "1", Name: "Compact High-Rise", Category: CategoryBuilt, Color: "#8C0000", ThermalOffset: 2.5},
	{ID: "2", Name: "Compact Mid-Rise", Category: CategoryBuilt, Color: "#D10000", ThermalOffset: 2.8},
	{ID: "3", Name: "Compact Low-Rise", Category: CategoryBuilt, Color: "#FF0000", ThermalOffset: 2.3},
	{ID: "4", Name: "Open High-Rise", Category: CategoryBuilt, Color: "#BF4D00", ThermalOffset: 1.8},
	{ID: "5", Name: "Open Mid-Rise", Category: CategoryBuilt, Color: "#FF6600", ThermalOffset: 2.0},
	{ID: "6", Name: "Open Low-Rise", Category: CategoryBuilt, Color: "#FF9955", ThermalOffset: 1.5},
	{ID: "7", Name: "Lightweight Low-Rise", Category: CategoryBuilt, Color: "#FAEE05", ThermalOffset: 1.2},
	{ID: "8", Name: "Large Low-Rise", Category: CategoryBuilt, Color: "#BCBCBC", ThermalOffset: 2.2},
	{ID: "9", Name: "Sparsely Built", Category: CategoryBuilt, Color: "#FFCCAA", ThermalOffset: 0.5},
	{ID: "10", Name: "Heavy Industry", Category: CategoryBuilt, Color: "#555555", ThermalOffset: 2.6},
	{ID: "11", Name: "Dense Trees", Category: CategoryNatural, Color: "#006A00", ThermalOffset: -1.5},
	{ID: "12", Name: "Scattered Trees", Category: CategoryNatural, Color: "#00AA00", ThermalOffset: -0.8},
	{ID: "13", Name: "Bush or Scrub", Category: CategoryNatural, Color: "#648525", ThermalOffset: -0.3},
	{ID: "14", Name: "Low Plants", Category: CategoryNatural, Color: "#B9DB79", ThermalOffset: 0.0},
	{ID: "15", Name: "Bare Rock or Paved", Category: CategoryNatural, Color: "#000000", ThermalOffset: 2.0},
	{ID: "16", Name: "Bare Soil or Sand", Category: CategoryNatural, Color: "#FBF7AE", ThermalOffset: 1.0},
	{ID: "17", Name: "Water", Category: CategoryNatural, Color: "#6A6AFF", ThermalOffset: -2.0},
}
