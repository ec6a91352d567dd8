package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/urbanclimate/lcz-planner/internal/analysis"
	"github.com/urbanclimate/lcz-planner/internal/sampler"
)

// sampleColumns defines the ordered samples CSV output columns.
var sampleColumns = []string{
	"ID",
	"Zone ID",
	"LCZ Class",
	"Latitude",
	"Longitude",
	"Temperature C",
	"Source",
	"Observed At",
}

// statsColumns defines the ordered class statistics CSV output columns.
var statsColumns = []string{
	"LCZ Class",
	"Name",
	"Count",
	"Mean Temp",
	"Std Temp",
	"Min Temp",
	"Max Temp",
	"Expected Delta",
	"Observed Delta",
}

// scenarioColumns defines the ordered scenario comparison CSV output columns.
var scenarioColumns = []string{
	"Scenario Type",
	"From Classes",
	"Target Class",
	"Conversion Rate",
	"Area Converted km2",
	"Avg From Temp",
	"Target Temp",
	"Expected Change",
	"Zones Affected",
	"Impact",
}

// WriteSamplesCSV writes the raw temperature samples to path.
func (r *Report) WriteSamplesCSV(path string) error {
	return writeCSV(path, "samples", sampleColumns, len(r.Samples), func(i int) []string {
		return buildSampleRow(r.Samples[i])
	})
}

// WriteStatsCSV writes the per-class statistics to path, hottest class first.
func (r *Report) WriteStatsCSV(path string) error {
	return writeCSV(path, "stats", statsColumns, len(r.Stats.Classes), func(i int) []string {
		return buildStatsRow(r.Stats.Classes[i], r.Stats.HasBaseline)
	})
}

// WriteScenariosCSV writes the bulk scenario comparison to path.
func (r *Report) WriteScenariosCSV(path string) error {
	return writeCSV(path, "scenarios", scenarioColumns, len(r.Scenarios), func(i int) []string {
		return buildScenarioRow(r.Scenarios[i])
	})
}

// writeCSV writes a header plus n rows produced by rowFn.
func writeCSV(path, label string, header []string, n int, rowFn func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s csv", label)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "report: write %s header", label)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(rowFn(i)); err != nil {
			return eris.Wrapf(err, "report: write %s row", label)
		}
	}
	return w.Error()
}

func buildSampleRow(s sampler.Sample) []string {
	return []string{
		s.ID,
		s.ZoneID,
		s.Class,
		strconv.FormatFloat(s.Lat, 'f', 6, 64),
		strconv.FormatFloat(s.Lon, 'f', 6, 64),
		formatTemp(s.TempC),
		s.Source,
		s.ObservedAt.UTC().Format(time.RFC3339),
	}
}

func buildStatsRow(cs analysis.ClassStats, hasBaseline bool) []string {
	observed := ""
	if hasBaseline {
		observed = fmt.Sprintf("%+.2f", cs.ObservedDelta)
	}
	return []string{
		cs.Class,
		cs.Name,
		strconv.Itoa(cs.Count),
		formatTemp(cs.MeanTemp),
		formatTemp(cs.StdTemp),
		formatTemp(cs.MinTemp),
		formatTemp(cs.MaxTemp),
		fmt.Sprintf("%+.2f", cs.ExpectedDelta),
		observed,
	}
}

func buildScenarioRow(sc analysis.BulkResult) []string {
	return []string{
		sc.Type,
		strings.Join(sc.FromClasses, ","),
		sc.TargetClass,
		fmt.Sprintf("%.0f%%", sc.ConversionRate*100),
		formatTemp(sc.AreaConvertedKM2),
		formatTemp(sc.AvgFromTemp),
		formatTemp(sc.TargetTemp),
		fmt.Sprintf("%+.2f", sc.ExpectedChange),
		strconv.Itoa(sc.ZonesAffected),
		sc.Impact,
	}
}
