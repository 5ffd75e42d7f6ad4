package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/core/recommend"
)

var (
	recommendLimit int
	recommendJSON  bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <strategy> [id]",
	Short: "Print recommendations for a user or book",
	Long: "Strategies: " + strategyNames() + ".\n" +
		"similar takes a book id, trending takes no id, the rest take a user id.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := recommend.ParseStrategy(args[0])
		if err != nil {
			return err
		}
		var subject string
		if len(args) == 2 {
			subject = args[1]
		}
		if strategy.NeedsSubject() && subject == "" {
			return fmt.Errorf("%s needs an id", strategy)
		}

		limit := recommendLimit
		if !cmd.Flags().Changed("limit") {
			limit = recommend.DefaultLimit(strategy)
		}

		ctx := cmd.Context()
		shelf, _, err := openShelf(ctx)
		if err != nil {
			return err
		}
		defer shelf.Close(ctx)

		results, err := shelf.Recommender.Recommend(ctx, strategy, subject, limit)
		if err != nil {
			return err
		}

		if recommendJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		return printResults(cmd.OutOrStdout(), results)
	},
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 10, "Maximum number of results (default depends on strategy)")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func strategyNames() string {
	names := make([]string, len(recommend.Strategies))
	for i, s := range recommend.Strategies {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func printResults(w io.Writer, results []model.RecommendationResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no recommendations")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tBOOK\tTITLE\tREASON")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\t%s\n", i+1, r.Score, r.Book.ID, r.Book.Title, r.Reason)
	}
	return tw.Flush()
}
