package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "Create uniqueness constraints and lookup indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		shelf, _, err := openShelf(ctx)
		if err != nil {
			return err
		}
		defer shelf.Close(ctx)

		if err := shelf.BuildIndices(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "indices ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indicesCmd)
}
