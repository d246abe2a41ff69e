package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/datacatalog/internal/domain/entities"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete data products",
		Long:  "Deletes data products from the registry and the catalog graph. Ids the registry does not hold are reported and skipped.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args)
		},
	}
}

func runDelete(cmd *cobra.Command, ids []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		deleted := 0
		for _, id := range ids {
			err := d.Catalog.Delete(ctx, id)
			switch {
			case err == nil:
				deleted++
				fmt.Printf("Deleted %s\n", id)
			case errors.Is(err, entities.ErrNotFound):
				fmt.Printf("Not found: %s\n", id)
			default:
				return err
			}
		}

		if len(ids) > 1 {
			fmt.Printf("Deleted %d of %d data products\n", deleted, len(ids))
		}
		return nil
	})
}
