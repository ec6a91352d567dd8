package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lcz-planner",
	Short: "Local Climate Zone thermal mapping and scenario planning",
	Long:  "Loads LCZ polygons, samples air temperatures per zone, aggregates per-class statistics, and predicts the thermal effect of land-use change scenarios.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
