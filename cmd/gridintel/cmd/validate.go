package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Audit pipeline cohesion across all produced artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner()
		if err != nil {
			return err
		}
		rep, err := r.Validate()
		if err != nil {
			return err
		}

		fmt.Printf("cohesion score: %.1f/100\n", rep.Score)
		fmt.Printf("  data flow:          %.1f\n", rep.DataFlowScore)
		fmt.Printf("  integration points: %.1f\n", rep.IntegrationScore)
		fmt.Printf("  output consistency: %.1f\n", rep.OutputScore)
		if len(rep.Gaps) > 0 {
			fmt.Printf("gaps (%d):\n", len(rep.Gaps))
			for _, gap := range rep.Gaps {
				fmt.Printf("  - %s\n", gap)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
