package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog graph",
		Long:  "Writes the whole catalog graph as N-Quads.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, output string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) (err error) {
		var w io.Writer = os.Stdout
		if output != "" {
			f, ferr := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if ferr != nil {
				return fmt.Errorf("creating file: %w", ferr)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("closing file: %w", cerr)
				}
			}()
			w = f
		}

		if err := d.Catalog.Export(ctx, w); err != nil {
			return err
		}

		if output != "" {
			fmt.Printf("Exported catalog to %s\n", output)
		}
		return nil
	})
}
