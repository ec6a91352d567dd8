package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/analysis"
	"github.com/urbanclimate/lcz-planner/internal/lcz"
	"github.com/urbanclimate/lcz-planner/internal/report"
	"github.com/urbanclimate/lcz-planner/internal/sampler"
)

var (
	analyzeInput   string
	analyzeOut     string
	analyzeOffline bool
	analyzePresets string
	analyzePoints  int
	analyzeSeed    int64
	analyzeNoStore bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Sample temperatures over a zone file and report per-class statistics",
	Long:  "Loads LCZ polygons, samples air temperatures at points inside each zone, aggregates per-class statistics against the Low Plants baseline, runs the configured conversion scenarios, and writes CSV, XLSX, and text reports.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reg := lcz.DefaultRegistry()

		col, err := loadZones(analyzeInput, reg)
		if err != nil {
			return err
		}

		provider := initProvider(col, analyzeOffline)

		points := analyzePoints
		if points == 0 {
			points = cfg.Sampling.PointsPerZone
		}
		smp := sampler.New(provider, sampler.Config{
			PointsPerZone: points,
			Concurrency:   cfg.Sampling.Concurrency,
			Seed:          analyzeSeed,
		})

		samples, err := smp.Run(ctx, col)
		if err != nil {
			return eris.Wrap(err, "analyze: sample temperatures")
		}
		zap.L().Info("sampling complete",
			zap.Int("samples", len(samples)),
			zap.String("provider", provider.Name()),
		)

		stats, err := analysis.ComputeStats(samples, reg)
		if err != nil {
			return err
		}

		presets := analysis.DefaultPresets()
		if analyzePresets != "" {
			presets, err = analysis.LoadPresets(analyzePresets)
			if err != nil {
				return err
			}
		}
		sim := analysis.NewSimulator(stats, col, reg)
		scenarios := sim.RunPresets(presets)

		if !analyzeNoStore {
			if err := persistRun(ctx, col, provider.Name(), samples); err != nil {
				zap.L().Warn("analyze: persist run", zap.Error(err))
			}
		}

		outDir := analyzeOut
		if outDir == "" {
			outDir = cfg.Data.OutputDir
		}
		rep := &report.Report{
			ZoneFile:    zoneFileName(),
			Provider:    provider.Name(),
			GeneratedAt: time.Now().UTC(),
			Samples:     samples,
			Stats:       stats,
			Scenarios:   scenarios,
		}
		if err := rep.WriteAll(outDir); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, rep.Summary())
		fmt.Fprintf(os.Stdout, "Reports written to %s\n", outDir)
		return nil
	},
}

func zoneFileName() string {
	if analyzeInput != "" {
		return analyzeInput
	}
	return cfg.Data.ZonesFile
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "zone geometry file (KML/KMZ/GeoJSON/shapefile)")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "report output directory (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeOffline, "offline", false, "use the synthetic weather provider")
	analyzeCmd.Flags().StringVar(&analyzePresets, "presets", "", "scenario preset YAML file (default built-in presets)")
	analyzeCmd.Flags().IntVar(&analyzePoints, "points", 0, "sample points per zone (default from config)")
	analyzeCmd.Flags().Int64Var(&analyzeSeed, "seed", 0, "sampling point seed, 0 for time-based")
	analyzeCmd.Flags().BoolVar(&analyzeNoStore, "no-store", false, "skip persisting the run to the database")
	rootCmd.AddCommand(analyzeCmd)
}
