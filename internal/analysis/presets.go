package analysis

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Preset is a named bulk scenario loaded from a YAML file.
type Preset struct {
	Name           string   `yaml:"name"`
	Type           string   `yaml:"type"`
	FromClasses    []string `yaml:"from_classes"`
	TargetClass    string   `yaml:"target_class"`
	ConversionRate float64  `yaml:"conversion_rate"`
}

type presetFile struct {
	Scenarios []Preset `yaml:"scenarios"`
}

// LoadPresets reads scenario presets from a YAML file.
func LoadPresets(path string) ([]Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: read presets %s", path)
	}

	var pf presetFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, eris.Wrapf(err, "analysis: parse presets %s", path)
	}

	for i, p := range pf.Scenarios {
		if p.Type != ScenarioUrbanization && p.Type != ScenarioGreening {
			return nil, eris.Errorf("analysis: preset %d has unknown type %q", i, p.Type)
		}
		if len(p.FromClasses) == 0 || p.TargetClass == "" {
			return nil, eris.Errorf("analysis: preset %d is missing classes", i)
		}
	}
	return pf.Scenarios, nil
}

// DefaultPresets returns the built-in what-if scenarios: moderate and
// intense urbanization, light and intense greening.
func DefaultPresets() []Preset {
	return []Preset{
		{
			Name:           "moderate-urbanization",
			Type:           ScenarioUrbanization,
			FromClasses:    []string{"12", "14"},
			TargetClass:    "6",
			ConversionRate: 0.3,
		},
		{
			Name:           "intense-urbanization",
			Type:           ScenarioUrbanization,
			FromClasses:    []string{"11", "12", "14"},
			TargetClass:    "2",
			ConversionRate: 0.5,
		},
		{
			Name:           "light-greening",
			Type:           ScenarioGreening,
			FromClasses:    []string{"6", "9"},
			TargetClass:    "12",
			ConversionRate: 0.2,
		},
		{
			Name:           "intense-greening",
			Type:           ScenarioGreening,
			FromClasses:    []string{"2", "3", "6"},
			TargetClass:    "11",
			ConversionRate: 0.4,
		},
	}
}

// RunPresets executes every preset, skipping the ones the observed data
// cannot support (missing classes, no matching zones).
func (s *Simulator) RunPresets(presets []Preset) []BulkResult {
	results := make([]BulkResult, 0, len(presets))
	for _, p := range presets {
		res, err := s.Convert(p.Type, p.FromClasses, p.TargetClass, p.ConversionRate)
		if err != nil {
			zap.L().Warn("analysis: preset skipped",
				zap.String("preset", p.Name),
				zap.Error(err),
			)
			continue
		}
		results = append(results, res)
	}
	return results
}
