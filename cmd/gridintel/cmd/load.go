package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the analysis snapshot into the SQLite store",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runner()
		if err != nil {
			return err
		}
		n, err := r.Load()
		if err != nil {
			return err
		}
		fmt.Printf("loaded %d documents into the store\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
