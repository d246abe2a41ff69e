package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				status, err := d.Catalog.Status(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("Catalog:       %s\n", status.CatalogID)
				fmt.Printf("Registry:      %s\n", d.Config.Registry.URL)
				fmt.Printf("Data products: %d\n", status.Products)
				fmt.Printf("Facts:         %d\n", status.Facts)
				if status.Snapshot != nil {
					fmt.Printf("Snapshot:      v%d, saved %s\n",
						status.Snapshot.Version, status.Snapshot.SavedAt.Local().Format(time.DateTime))
				}
				fmt.Printf("Discovery:     %t\n", d.Search.Enabled())
				return nil
			})
		},
	}
}
