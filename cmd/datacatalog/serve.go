package main

import (
	"github.com/spf13/cobra"

	"github.com/ersonp/datacatalog/internal/infrastructure/httpapi"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog REST API",
		Long: "Bootstraps the catalog from its snapshot (creating the base entities on first run), " +
			"serves the REST API, and persists the catalog on SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				serverCfg := d.Config.Server
				if addr != "" {
					serverCfg.Addr = addr
				}
				api := httpapi.New(d.Catalog, d.Search, d.Logger)
				return httpapi.NewServer(serverCfg, api, d.Logger).Run(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")

	return cmd
}
