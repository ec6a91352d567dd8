package analysis

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/urbanclimate/lcz-planner/internal/geometry"
	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

// Scenario types for bulk land-use conversions.
const (
	ScenarioUrbanization = "urbanization"
	ScenarioGreening     = "greening"
)

// ZoneChange is the simulated effect of reclassifying a single zone.
type ZoneChange struct {
	ZoneID      string  `json:"zone_id"`
	OldClass    string  `json:"old_class"`
	NewClass    string  `json:"new_class"`
	OldTemp     float64 `json:"old_temp"`
	NewTemp     float64 `json:"new_temp"`
	TempChange  float64 `json:"temp_change"`
	AreaKM2     float64 `json:"area_km2"`
	CentroidLat float64 `json:"centroid_lat"`
	CentroidLon float64 `json:"centroid_lon"`
}

// BulkResult is the aggregated effect of converting a share of every zone
// in the source classes to the target class.
type BulkResult struct {
	Type             string   `json:"scenario_type"`
	FromClasses      []string `json:"from_classes"`
	TargetClass      string   `json:"target_class"`
	ConversionRate   float64  `json:"conversion_rate"`
	AreaConvertedKM2 float64  `json:"total_area_converted_km2"`
	AvgFromTemp      float64  `json:"avg_from_temp"`
	TargetTemp       float64  `json:"target_temp"`
	ExpectedChange   float64  `json:"expected_temp_change"`
	ZonesAffected    int      `json:"num_zones_affected"`
	Impact           string   `json:"impact"`
}

// Simulator runs what-if scenarios against observed statistics and zone
// geometry.
type Simulator struct {
	stats Stats
	col   *geometry.Collection
	reg   *lcz.Registry
}

// NewSimulator creates a Simulator over observed stats and the zone
// collection they were sampled from.
func NewSimulator(stats Stats, col *geometry.Collection, reg *lcz.Registry) *Simulator {
	return &Simulator{stats: stats, col: col, reg: reg}
}

// ZoneChange simulates reclassifying one zone, using observed class mean
// temperatures.
func (s *Simulator) ZoneChange(zoneID, newClass string) (ZoneChange, error) {
	zone, ok := s.col.Zone(zoneID)
	if !ok {
		return ZoneChange{}, eris.Errorf("analysis: unknown zone %q", zoneID)
	}

	newClass = lcz.Canonical(newClass)
	oldStats, ok := s.stats.ByClass(zone.Class)
	if !ok {
		return ZoneChange{}, eris.Errorf("analysis: no samples for class %s", zone.Class)
	}
	newStats, ok := s.stats.ByClass(newClass)
	if !ok {
		return ZoneChange{}, eris.Errorf("analysis: no samples for class %s", newClass)
	}

	return ZoneChange{
		ZoneID:      zoneID,
		OldClass:    zone.Class,
		NewClass:    newClass,
		OldTemp:     oldStats.MeanTemp,
		NewTemp:     newStats.MeanTemp,
		TempChange:  newStats.MeanTemp - oldStats.MeanTemp,
		AreaKM2:     zone.AreaKM2,
		CentroidLat: zone.CentroidLat,
		CentroidLon: zone.CentroidLon,
	}, nil
}

// Convert simulates converting conversionRate of the area in fromClasses to
// targetClass. scenarioType labels the result (urbanization or greening);
// the arithmetic is the same either way.
func (s *Simulator) Convert(scenarioType string, fromClasses []string, targetClass string, conversionRate float64) (BulkResult, error) {
	if conversionRate <= 0 || conversionRate > 1 {
		return BulkResult{}, eris.Errorf("analysis: conversion rate %v out of (0,1]", conversionRate)
	}

	canonical := make([]string, len(fromClasses))
	for i, c := range fromClasses {
		canonical[i] = lcz.Canonical(c)
	}
	targetClass = lcz.Canonical(targetClass)
	if !s.reg.Contains(targetClass) {
		return BulkResult{}, eris.Errorf("analysis: unknown target class %q", targetClass)
	}

	from := make(map[string]bool, len(canonical))
	for _, c := range canonical {
		from[c] = true
	}

	var totalArea float64
	var affected int
	for _, z := range s.col.Zones() {
		if from[z.Class] {
			totalArea += z.AreaKM2
			affected++
		}
	}
	if affected == 0 {
		return BulkResult{}, eris.Errorf("analysis: no zones in classes %s", strings.Join(canonical, ", "))
	}

	var fromTemps []float64
	for _, c := range canonical {
		if cs, ok := s.stats.ByClass(c); ok {
			fromTemps = append(fromTemps, cs.MeanTemp)
		}
	}
	target, ok := s.stats.ByClass(targetClass)
	if !ok {
		return BulkResult{}, eris.Errorf("analysis: no samples for target class %s", targetClass)
	}
	if len(fromTemps) == 0 {
		return BulkResult{}, eris.New("analysis: no samples for any source class")
	}

	var sum float64
	for _, t := range fromTemps {
		sum += t
	}
	avgFrom := sum / float64(len(fromTemps))
	change := (target.MeanTemp - avgFrom) * conversionRate

	return BulkResult{
		Type:             scenarioType,
		FromClasses:      canonical,
		TargetClass:      targetClass,
		ConversionRate:   conversionRate,
		AreaConvertedKM2: totalArea * conversionRate,
		AvgFromTemp:      avgFrom,
		TargetTemp:       target.MeanTemp,
		ExpectedChange:   change,
		ZonesAffected:    affected,
		Impact:           Interpret(change),
	}, nil
}

// Interpret labels a temperature delta in the terms the reports use.
func Interpret(delta float64) string {
	switch {
	case delta > 2:
		return "strong warming"
	case delta > 0.5:
		return "warming"
	case delta > -0.5:
		return "neutral"
	case delta > -2:
		return "cooling"
	default:
		return "strong cooling"
	}
}

// Summary renders a one-line description of a bulk result for logs and
// report tables.
func (r BulkResult) Summary() string {
	return fmt.Sprintf("%s: %s -> %s at %.0f%% over %.2f km2, expected change %+.2f°C (%s)",
		r.Type, strings.Join(r.FromClasses, ","), r.TargetClass,
		r.ConversionRate*100, r.AreaConvertedKM2, r.ExpectedChange, r.Impact)
}
