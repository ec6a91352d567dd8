package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/urbanclimate/lcz-planner/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect sampling run and scenario history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sampling runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tZONE FILE\tPROVIDER\tSAMPLES\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				r.ID, r.ZoneFile, r.Provider, r.SampleCount,
				r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var runsSamplesCmd = &cobra.Command{
	Use:   "samples <run-id>",
	Short: "List the samples of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		class, _ := cmd.Flags().GetString("class")
		limit, _ := cmd.Flags().GetInt("limit")

		samples, err := st.ListSamples(ctx, store.SampleFilter{
			RunID: args[0],
			Class: class,
			Limit: limit,
		})
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			fmt.Fprintln(os.Stderr, "No samples found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CLASS\tZONE\tLAT\tLON\tTEMP C\tSOURCE")
		for _, s := range samples {
			fmt.Fprintf(w, "%s\t%s\t%.5f\t%.5f\t%.2f\t%s\n",
				s.Class, s.ZoneID, s.Lat, s.Lon, s.TempC, s.Source)
		}
		return w.Flush()
	},
}

var runsScenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List saved scenario calculations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		recs, err := st.ListScenarios(ctx, limit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(os.Stderr, "No scenarios found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FROM\tTO\tBASE\tNEW\tDELTA\tCREATED")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%+.2f\t%s\n",
				r.FromClass, r.ToClass, r.BaseTemperature, r.NewTemperature, r.Delta,
				r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsSamplesCmd.Flags().String("class", "", "filter by LCZ class")
	runsSamplesCmd.Flags().Int("limit", 50, "maximum samples to list")
	runsScenariosCmd.Flags().Int("limit", 20, "maximum scenarios to list")

	runsCmd.AddCommand(runsListCmd, runsSamplesCmd, runsScenariosCmd)
	rootCmd.AddCommand(runsCmd)
}
