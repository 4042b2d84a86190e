package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract and classify harvested documents into the analysis snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner()
		if err != nil {
			return err
		}
		snap, err := r.Analyze(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("analyzed %d documents\n", snap.DocumentsAnalyzed)
		fmt.Printf("  capacity:    %d\n", len(snap.Capacity))
		fmt.Printf("  connections: %d\n", len(snap.Connections))
		fmt.Printf("  constraints: %d\n", len(snap.Constraints))
		fmt.Printf("  investments: %d\n", len(snap.Investments))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
