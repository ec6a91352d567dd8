package lcz

import "fmt"

// ScenarioResult is the outcome of one reclassification calculation.
// Temperatures are unrounded; presentation layers format for display.
type ScenarioResult struct {
	FromClass       string  `json:"from_lcz"`
	FromName        string  `json:"from_name"`
	ToClass         string  `json:"to_lcz"`
	ToName          string  `json:"to_name"`
	BaseTemperature float64 `json:"base_temperature"`
	NewTemperature  float64 `json:"new_temperature"`
	Delta           float64 `json:"delta"`
	Explanation     string  `json:"explanation"`
}

// Calculator predicts the temperature change of converting a zone between
// LCZ classes. It is stateless apart from the injected read-only registry,
// so a single instance serves concurrent requests.
type Calculator struct {
	registry *Registry
}

// NewCalculator creates a Calculator over the given registry.
func NewCalculator(registry *Registry) *Calculator {
	return &Calculator{registry: registry}
}

// Compute returns the predicted temperature of a zone currently at baseTemp
// if it were converted from class `from` to class `to`. Both ids are
// validated before any arithmetic; an unknown id fails with
// *UnknownZoneClassError and no partial result.
func (c *Calculator) Compute(baseTemp float64, from, to string) (ScenarioResult, error) {
	fromClass, err := c.registry.Lookup(from)
	if err != nil {
		return ScenarioResult{}, err
	}
	toClass, err := c.registry.Lookup(to)
	if err != nil {
		return ScenarioResult{}, err
	}

	delta := toClass.ThermalOffset - fromClass.ThermalOffset

	return ScenarioResult{
		FromClass:       fromClass.ID,
		FromName:        fromClass.Name,
		ToClass:         toClass.ID,
		ToName:          toClass.Name,
		BaseTemperature: baseTemp,
		NewTemperature:  baseTemp + delta,
		Delta:           delta,
		Explanation:     explain(fromClass, toClass, delta),
	}, nil
}

// explain renders the human-readable summary shown next to the result.
func explain(from, to ZoneClass, delta float64) string {
	var clause string
	switch {
	case delta > 0:
		clause = fmt.Sprintf("will increase the temperature by %.2f°C, resulting in a warming effect", delta)
	case delta < 0:
		clause = fmt.Sprintf("will decrease the temperature by %.2f°C, resulting in a cooling effect", -delta)
	default:
		clause = "will leave the temperature unchanged"
	}
	return fmt.Sprintf(
		"Converting from LCZ %s (%s) to LCZ %s (%s) %s. This is based on the thermal offset difference between the two LCZ types.",
		from.ID, from.Name, to.ID, to.Name, clause,
	)
}
