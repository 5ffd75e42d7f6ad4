package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/shelfgraph/internal/core/seed"
)

var (
	seedFile    string
	seedReset   bool
	seedNoIndex bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a TOML catalog into the graph",
	Long:  "Merges authors, genres, books, users and their relationships from a TOML dataset. With --reset every existing node is deleted first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		shelf, logger, err := openShelf(ctx)
		if err != nil {
			return err
		}
		defer shelf.Close(ctx)

		stats, err := seed.NewLoader(shelf.Driver, logger).Load(ctx, ds, seed.Options{
			Reset:       seedReset,
			SkipIndices: seedNoIndex,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d books, %d users, %d reads from %s\n",
			stats["books"], stats["users"], stats["read"], seedFile)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "config/seed.toml", "Dataset to load")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Delete all nodes before loading")
	seedCmd.Flags().BoolVar(&seedNoIndex, "skip-indices", false, "Do not create constraints and indexes")
	rootCmd.AddCommand(seedCmd)
}
