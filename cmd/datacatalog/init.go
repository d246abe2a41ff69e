package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/datacatalog/internal/application/handlers"
	"github.com/ersonp/datacatalog/internal/domain/ports"
	"github.com/ersonp/datacatalog/internal/infrastructure/config"
	embedder "github.com/ersonp/datacatalog/internal/infrastructure/embedder/openai"
	"github.com/ersonp/datacatalog/internal/infrastructure/snapshot/sqlite"
	"github.com/ersonp/datacatalog/internal/infrastructure/vectordb/qdrant"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new data catalog",
		Long:  "Creates a .datacatalog directory with default configuration, the snapshot database and, when discovery is enabled, the Qdrant collection.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir, err := baseDir()
	if err != nil {
		return err
	}

	if config.Exists(dir) {
		return fmt.Errorf("datacatalog already initialized in %s", dir)
	}

	if err := config.WriteDefault(dir); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	fmt.Printf("Created %s\n", config.ConfigFilePath(dir))

	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer store.Close()

	var (
		collections ports.CollectionManager
		vectorSize  uint64
	)
	if cfg.Discovery.Enabled {
		emb, err := embedder.NewEmbedder(cfg.Discovery.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		repo, err := qdrant.NewRepository(cfg.Discovery.Qdrant)
		if err != nil {
			return fmt.Errorf("connecting to qdrant: %w", err)
		}
		defer repo.Close()
		collections = repo
		vectorSize = emb.VectorSize()
	}

	result, err := handlers.NewInitHandler(store, collections, vectorSize).Handle(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Created snapshot database: %s\n", result.DatabasePath)
	if result.CollectionName != "" {
		fmt.Printf("Created Qdrant collection: %s\n", result.CollectionName)
	}
	fmt.Println("Data catalog initialized. Edit the config, then run 'datacatalog serve'.")

	return nil
}
