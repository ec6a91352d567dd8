// Package analysis aggregates temperature samples into per-class statistics
// and simulates land-use change scenarios over a zone collection.
package analysis

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
	"github.com/urbanclimate/lcz-planner/internal/sampler"
)

// ClassStats summarizes sampled temperatures for one LCZ class.
type ClassStats struct {
	Class         string  `json:"lcz_class"`
	Name          string  `json:"name"`
	Count         int     `json:"count"`
	MeanTemp      float64 `json:"mean_temp"`
	StdTemp       float64 `json:"std_temp"`
	MinTemp       float64 `json:"min_temp"`
	MaxTemp       float64 `json:"max_temp"`
	ExpectedDelta float64 `json:"temp_delta_expected"`
	// ObservedDelta is the mean offset from the baseline class mean. Only
	// meaningful when the parent Stats carries a baseline.
	ObservedDelta float64 `json:"temp_delta_observed"`
}

// Stats is the per-class aggregation over a sampling run, sorted hottest
// first.
type Stats struct {
	Classes      []ClassStats `json:"classes"`
	BaselineMean float64      `json:"baseline_mean"`
	// HasBaseline is false when no samples fell in the baseline class; the
	// observed deltas are zero in that case.
	HasBaseline bool `json:"has_baseline"`
}

// ByClass returns the stats entry for a class code.
func (s Stats) ByClass(class string) (ClassStats, bool) {
	for _, cs := range s.Classes {
		if cs.Class == class {
			return cs, true
		}
	}
	return ClassStats{}, false
}

// ComputeStats aggregates samples per LCZ class: mean, sample standard
// deviation, min/max, the registry's expected offset, and the observed
// offset against the baseline class mean.
func ComputeStats(samples []sampler.Sample, reg *lcz.Registry) (Stats, error) {
	if len(samples) == 0 {
		return Stats{}, eris.New("analysis: no samples to aggregate")
	}

	byClass := make(map[string][]float64)
	for _, smp := range samples {
		byClass[smp.Class] = append(byClass[smp.Class], smp.TempC)
	}

	var out Stats
	for class, temps := range byClass {
		zc, err := reg.Lookup(class)
		if err != nil {
			zap.L().Warn("analysis: dropping samples with unknown class",
				zap.String("class", class),
				zap.Int("count", len(temps)),
			)
			continue
		}

		cs := ClassStats{
			Class:         class,
			Name:          zc.Name,
			Count:         len(temps),
			ExpectedDelta: zc.ThermalOffset,
			MinTemp:       math.Inf(1),
			MaxTemp:       math.Inf(-1),
		}

		var sum float64
		for _, v := range temps {
			sum += v
			cs.MinTemp = math.Min(cs.MinTemp, v)
			cs.MaxTemp = math.Max(cs.MaxTemp, v)
		}
		cs.MeanTemp = sum / float64(len(temps))

		if len(temps) > 1 {
			var sq float64
			for _, v := range temps {
				d := v - cs.MeanTemp
				sq += d * d
			}
			cs.StdTemp = math.Sqrt(sq / float64(len(temps)-1))
		}

		out.Classes = append(out.Classes, cs)
	}
	if len(out.Classes) == 0 {
		return Stats{}, eris.New("analysis: no samples with a known class")
	}

	if base, ok := findClass(out.Classes, lcz.BaselineClassID); ok {
		out.BaselineMean = base.MeanTemp
		out.HasBaseline = true
		for i := range out.Classes {
			out.Classes[i].ObservedDelta = out.Classes[i].MeanTemp - out.BaselineMean
		}
	}

	sort.Slice(out.Classes, func(i, j int) bool {
		if out.Classes[i].MeanTemp != out.Classes[j].MeanTemp {
			return out.Classes[i].MeanTemp > out.Classes[j].MeanTemp
		}
		return out.Classes[i].Class < out.Classes[j].Class
	})
	return out, nil
}

func findClass(classes []ClassStats, id string) (ClassStats, bool) {
	for _, cs := range classes {
		if cs.Class == id {
			return cs, true
		}
	}
	return ClassStats{}, false
}
