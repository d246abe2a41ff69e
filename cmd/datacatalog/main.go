// Package main provides the entry point for the datacatalog CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalBaseDir string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "datacatalog",
		Short:         "A data catalog that keeps a catalog graph in sync with an NGSI-LD registry",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalBaseDir, "dir", "C", "", "Directory containing .datacatalog (default: current directory)")

	rootCmd.AddCommand(
		newInitCmd(),
		newServeCmd(),
		newRegisterCmd(),
		newDeleteCmd(),
		newProductsCmd(),
		newSearchCmd(),
		newReindexCmd(),
		newExportCmd(),
		newAuditCmd(),
		newStatusCmd(),
	)

	return rootCmd
}

// baseDir returns the directory holding the .datacatalog config directory.
func baseDir() (string, error) {
	if globalBaseDir != "" {
		return globalBaseDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}
