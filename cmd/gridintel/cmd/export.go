package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the CSV exports and dashboard configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner()
		if err != nil {
			return err
		}
		sum, err := r.Export()
		if err != nil {
			return err
		}

		names := make([]string, 0, len(sum.RowCounts))
		for name := range sum.RowCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %d rows\n", name, sum.RowCounts[name])
		}
		fmt.Printf("exported %d files\n", sum.Files)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
