// Package report renders sampling runs, class statistics, and scenario
// results to CSV files, an XLSX workbook, and a plain-text summary.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/urbanclimate/lcz-planner/internal/analysis"
	"github.com/urbanclimate/lcz-planner/internal/sampler"
)

// Output file names produced under the report directory.
const (
	SamplesFile   = "samples.csv"
	StatsFile     = "class_stats.csv"
	ScenariosFile = "scenarios.csv"
	WorkbookFile  = "report.xlsx"
	SummaryFile   = "summary.txt"
)

// Report bundles the artifacts of one analysis run.
type Report struct {
	ZoneFile    string
	Provider    string
	GeneratedAt time.Time

	Samples   []sampler.Sample
	Stats     analysis.Stats
	Scenarios []analysis.BulkResult
}

// WriteAll writes every report artifact into dir, creating it if needed.
func (r *Report) WriteAll(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "report: create output dir")
	}

	if err := r.WriteSamplesCSV(filepath.Join(dir, SamplesFile)); err != nil {
		return err
	}
	if err := r.WriteStatsCSV(filepath.Join(dir, StatsFile)); err != nil {
		return err
	}
	if len(r.Scenarios) > 0 {
		if err := r.WriteScenariosCSV(filepath.Join(dir, ScenariosFile)); err != nil {
			return err
		}
	}
	if err := r.WriteWorkbook(filepath.Join(dir, WorkbookFile)); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, SummaryFile), []byte(r.Summary()), 0o644); err != nil {
		return eris.Wrap(err, "report: write summary")
	}
	return nil
}

// Summary renders the text block the CLI prints after an analysis run.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "LCZ thermal analysis: %s\n", r.ZoneFile)
	fmt.Fprintf(&b, "Generated %s using %s weather data\n",
		r.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), r.Provider)
	fmt.Fprintf(&b, "Samples: %d across %d classes\n\n", len(r.Samples), len(r.Stats.Classes))

	fmt.Fprintf(&b, "%-6s %-22s %6s %8s %8s %10s %10s\n",
		"Class", "Name", "Count", "Mean", "Std", "Expected", "Observed")
	for _, cs := range r.Stats.Classes {
		observed := "-"
		if r.Stats.HasBaseline {
			observed = fmt.Sprintf("%+.2f", cs.ObservedDelta)
		}
		fmt.Fprintf(&b, "%-6s %-22s %6d %8.2f %8.2f %+10.2f %10s\n",
			cs.Class, cs.Name, cs.Count, cs.MeanTemp, cs.StdTemp, cs.ExpectedDelta, observed)
	}
	if r.Stats.HasBaseline {
		fmt.Fprintf(&b, "\nBaseline (Low Plants) mean: %.2f°C\n", r.Stats.BaselineMean)
	} else {
		b.WriteString("\nNo baseline class sampled; observed deltas unavailable\n")
	}

	if len(r.Scenarios) > 0 {
		b.WriteString("\nScenarios:\n")
		for _, sc := range r.Scenarios {
			fmt.Fprintf(&b, "  %s\n", sc.Summary())
		}
	}

	return b.String()
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
