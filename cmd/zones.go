package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
)

var zonesInput string

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the LCZ classification table, or the zones in a geometry file",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := lcz.DefaultRegistry()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

		if zonesInput == "" {
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tCOLOR\tOFFSET")
			for _, c := range reg.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%+.1f\n",
					c.ID, c.Name, c.Category, c.Color, c.ThermalOffset)
			}
			return w.Flush()
		}

		col, err := loadZones(zonesInput, reg)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, "ID\tCLASS\tNAME\tAREA KM2\tCENTROID")
		for _, z := range col.Zones() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.5f,%.5f\n",
				z.ID, z.Class, z.Name, z.AreaKM2, z.CentroidLat, z.CentroidLon)
		}
		return w.Flush()
	},
}

func init() {
	zonesCmd.Flags().StringVar(&zonesInput, "input", "", "zone geometry file; omit to list the class table")
	rootCmd.AddCommand(zonesCmd)
}
