package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Discover and download TSO documents for every configured country",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner()
		if err != nil {
			return err
		}
		summaries := r.Harvest(cmd.Context())

		discovered, downloaded, failed := 0, 0, 0
		for _, sum := range summaries {
			fmt.Printf("%s (%s): %d discovered, %d downloaded, %d failed\n",
				sum.Country, sum.TSO, sum.Discovered, sum.Downloaded, len(sum.Errors))
			discovered += sum.Discovered
			downloaded += sum.Downloaded
			failed += len(sum.Errors)
		}
		fmt.Printf("total: %d discovered, %d downloaded, %d failed\n", discovered, downloaded, failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(harvestCmd)
}
