package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/datacatalog/internal/application/handlers"
	"github.com/ersonp/datacatalog/internal/domain/entities"
)

type registerFlags struct {
	file   string
	format string
	dryRun bool

	id            string
	name          string
	description   string
	owner         string
	keywords      []string
	glossaryTerms []string
	mappings      []string
}

func newRegisterCmd() *cobra.Command {
	var flags registerFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register data products",
		Long: "Registers one data product from flags, or every data product listed in a JSON, CSV or YAML manifest (--file). " +
			"Ids the registry already holds are skipped.",
		Example: `  datacatalog register --id air --name "Air quality" --description "Hourly readings" --owner alice \
      --keyword air --glossary-term https://example.org/glossary/AirQuality
  datacatalog register --file products.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.file != "" {
				return runRegisterFile(cmd, flags)
			}
			return runRegisterOne(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.file, "file", "", "Manifest file to register from")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "Manifest format (json, csv, yaml, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate the manifest without registering")

	cmd.Flags().StringVar(&flags.id, "id", "", "Data product id")
	cmd.Flags().StringVar(&flags.name, "name", "", "Data product name")
	cmd.Flags().StringVar(&flags.description, "description", "", "Data product description")
	cmd.Flags().StringVar(&flags.owner, "owner", "", "Owner (user name or URI)")
	cmd.Flags().StringSliceVar(&flags.keywords, "keyword", nil, "Keyword (repeatable)")
	cmd.Flags().StringSliceVar(&flags.glossaryTerms, "glossary-term", nil, "Business glossary term URI (repeatable)")
	cmd.Flags().StringSliceVar(&flags.mappings, "mapping", nil, "Mapping URI (repeatable)")

	cmd.MarkFlagsMutuallyExclusive("file", "id")

	return cmd
}

func runRegisterOne(cmd *cobra.Command, flags registerFlags) error {
	req := &entities.Registration{
		ID:            flags.id,
		Name:          flags.name,
		Description:   flags.description,
		Owner:         flags.owner,
		Keywords:      flags.keywords,
		GlossaryTerms: flags.glossaryTerms,
		Mappings:      flags.mappings,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	return withDeps(ctx, func(d *Deps) error {
		result, err := d.Catalog.Register(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s (%s)\n", result.ID, result.IRI)
		return nil
	})
}

func runRegisterFile(cmd *cobra.Command, flags registerFlags) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		fmt.Printf("Registering data products from %s...\n", flags.file)

		result, err := d.Import.Handle(ctx, flags.file, handlers.ImportOptions{
			Format: flags.format,
			DryRun: flags.dryRun,
		})
		if result != nil {
			printImportResult(result, flags.dryRun)
		}
		if err != nil {
			return fmt.Errorf("registering from file: %w", err)
		}
		return nil
	})
}

func printImportResult(result *handlers.ImportResult, dryRun bool) {
	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e.Error())
		}
	}

	fmt.Println()
	if dryRun {
		fmt.Printf("Dry run: %d data products would be registered", result.Total-len(result.Errors))
	} else {
		fmt.Printf("Registered: %d data products", len(result.Registered))
	}

	if len(result.Skipped) > 0 {
		fmt.Printf(", %d skipped (already registered)", len(result.Skipped))
	}

	if len(result.Errors) > 0 {
		fmt.Printf(", %d errors", len(result.Errors))
	}

	fmt.Println()
}
