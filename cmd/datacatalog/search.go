package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/datacatalog/internal/domain/services"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search data products",
		Long:  "Performs semantic search over data product titles, descriptions and keywords. Requires discovery.enabled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", services.DefaultSearchLimit, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, limit int) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		result, err := d.Search.Handle(ctx, query, limit)
		if err != nil {
			return err
		}

		if len(result.Hits) == 0 {
			fmt.Println("No data products found.")
			return nil
		}

		fmt.Printf("Found %d data products:\n\n", len(result.Hits))
		for i, hit := range result.Hits {
			fmt.Printf("%d. %s  %s (score %.3f)\n", i+1, hit.DataProductID, hit.Title, hit.Score)
			if hit.Description != "" {
				fmt.Printf("   %s\n", hit.Description)
			}
			fmt.Println()
		}
		return nil
	})
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the discovery index",
		Long:  "Embeds every data product in the catalog and rewrites its discovery index entry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				n, err := d.Search.Reindex(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Reindexed %d data products\n", n)
				return nil
			})
		},
	}
}
