package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ceylonmate/culture-kb/internal/service"
)

func newSearchCmd(a *app) *cobra.Command {
	params := &struct {
		Limit    int
		Category string
		JSON     bool
	}{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a semantic search against the stored collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			emb, err := a.newEmbedder()
			if err != nil {
				return err
			}

			results, err := service.New(store, emb).Search(ctx, query, params.Limit, params.Category)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if params.JSON {
				return a.printJSON(results)
			}
			if len(results) == 0 {
				fmt.Fprintln(a.out, "No results found.")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(a.out, "[%d] %s (%.3f)\n    %s\n", i+1, r.Category, r.Score, r.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&params.Limit, "limit", "n", service.DefaultSearchLimit, "maximum number of results")
	cmd.Flags().StringVar(&params.Category, "category", "", "only return passages in this category")
	cmd.Flags().BoolVar(&params.JSON, "json", false, "output results as JSON")

	return cmd
}
