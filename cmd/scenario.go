package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

var (
	scenarioFrom     string
	scenarioTo       string
	scenarioBaseTemp float64
	scenarioSave     bool
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Predict the thermal effect of converting between two LCZ classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		calc := lcz.NewCalculator(lcz.DefaultRegistry())
		result, err := calc.Compute(scenarioBaseTemp,
			lcz.Canonical(scenarioFrom), lcz.Canonical(scenarioTo))
		if err != nil {
			return err
		}

		printScenario(os.Stdout, result)

		if scenarioSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			rec, err := st.SaveScenario(ctx, result)
			if err != nil {
				return err
			}
			zap.L().Info("scenario saved", zap.String("id", rec.ID))
		}

		return nil
	},
}

func printScenario(w io.Writer, result lcz.ScenarioResult) {
	fmt.Fprintf(w, "LCZ %s (%s) -> LCZ %s (%s)\n",
		result.FromClass, result.FromName, result.ToClass, result.ToName)
	fmt.Fprintf(w, "Base temperature:  %.2f°C\n", result.BaseTemperature)
	fmt.Fprintf(w, "New temperature:   %.2f°C\n", result.NewTemperature)
	fmt.Fprintf(w, "Delta:             %+.2f°C\n", result.Delta)
	fmt.Fprintf(w, "\n%s\n", result.Explanation)
}

func init() {
	scenarioCmd.Flags().StringVar(&scenarioFrom, "from", "", "current LCZ class (1-17 or A-G)")
	scenarioCmd.Flags().StringVar(&scenarioTo, "to", "", "target LCZ class (1-17 or A-G)")
	scenarioCmd.Flags().Float64Var(&scenarioBaseTemp, "base-temp", 25.0, "current zone temperature in °C")
	scenarioCmd.Flags().BoolVar(&scenarioSave, "save", false, "persist the result to the scenario history")
	_ = scenarioCmd.MarkFlagRequired("from")
	_ = scenarioCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(scenarioCmd)
}
