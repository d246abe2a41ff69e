package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/datacatalog/internal/domain/entities"
)

func newProductsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "products [id]",
		Short: "List data products",
		Long:  "Lists the data products in the catalog, or shows one in detail.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !contains(validOutputFormats, format) {
				return fmt.Errorf("invalid format %q, valid formats: %v", format, validOutputFormats)
			}
			return runProducts(cmd, args, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")

	return cmd
}

func runProducts(cmd *cobra.Command, args []string, format string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		if len(args) == 1 {
			product, err := d.Catalog.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(os.Stdout, product)
			}
			displayProduct(os.Stdout, *product)
			return nil
		}

		products, err := d.Catalog.List(ctx)
		if err != nil {
			return fmt.Errorf("listing data products: %w", err)
		}

		if format == "json" {
			if products == nil {
				products = []entities.DataProduct{}
			}
			return writeJSON(os.Stdout, products)
		}

		if len(products) == 0 {
			fmt.Println("No data products found.")
			return nil
		}

		fmt.Printf("Showing %d data products:\n\n", len(products))
		for _, p := range products {
			displayProduct(os.Stdout, p)
		}
		return nil
	})
}

func displayProduct(w io.Writer, p entities.DataProduct) {
	fmt.Fprintf(w, "%s  %s\n", p.ID, p.Title)
	fmt.Fprintf(w, "   IRI: %s\n", p.IRI)
	if p.Description != "" {
		fmt.Fprintf(w, "   Description: %s\n", p.Description)
	}
	if len(p.Publishers) > 0 {
		fmt.Fprintf(w, "   Publishers: %s\n", strings.Join(p.Publishers, ", "))
	}
	if len(p.Keywords) > 0 {
		fmt.Fprintf(w, "   Keywords: %s\n", strings.Join(p.Keywords, ", "))
	}
	if len(p.GlossaryTerms) > 0 {
		fmt.Fprintf(w, "   Glossary terms: %s\n", strings.Join(p.GlossaryTerms, ", "))
	}
	if len(p.Mappings) > 0 {
		fmt.Fprintf(w, "   Mappings: %s\n", strings.Join(p.Mappings, ", "))
	}
	if p.AccessURL != "" {
		fmt.Fprintf(w, "   Access URL: %s\n", p.AccessURL)
	}
	fmt.Fprintln(w)
}
