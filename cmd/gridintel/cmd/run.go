package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the complete pipeline: harvest, analyze, load, export, validate",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner()
		if err != nil {
			return err
		}
		rep, err := r.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("pipeline complete, cohesion score %.1f/100 (%d gaps)\n", rep.Score, len(rep.Gaps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
