package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/datacatalog/internal/application/handlers"
	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/services"
	"github.com/ersonp/datacatalog/internal/infrastructure/config"
	embedder "github.com/ersonp/datacatalog/internal/infrastructure/embedder/openai"
	"github.com/ersonp/datacatalog/internal/infrastructure/logging"
	"github.com/ersonp/datacatalog/internal/infrastructure/registry/ngsild"
	"github.com/ersonp/datacatalog/internal/infrastructure/snapshot/sqlite"
	"github.com/ersonp/datacatalog/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Catalog *handlers.CatalogHandler
	Search  *handlers.SearchHandler
	Import  *handlers.ImportHandler
	Audit   *handlers.AuditHandler
}

// withDeps loads config, builds dependencies and bootstraps the catalog, then
// calls fn. The catalog is persisted once more when fn returns.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	return withBase(func(cfg *config.Config, logger *zap.Logger, store *sqlite.Repository) error {
		return withCatalog(ctx, cfg, logger, store, fn)
	})
}

// withAuditHandler provides the audit log without bootstrapping the catalog.
func withAuditHandler(fn func(*handlers.AuditHandler) error) error {
	return withBase(func(_ *config.Config, _ *zap.Logger, store *sqlite.Repository) error {
		return fn(handlers.NewAuditHandler(store))
	})
}

// withBase loads config, builds the logger and opens the snapshot store.
func withBase(fn func(*config.Config, *zap.Logger, *sqlite.Repository) error) error {
	dir, err := baseDir()
	if err != nil {
		return err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	return fn(cfg, logger, store)
}

func withCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger, store *sqlite.Repository, fn func(*Deps) error) (err error) {
	registry, err := ngsild.NewClient(cfg.Registry, logger)
	if err != nil {
		return fmt.Errorf("creating registry client: %w", err)
	}

	reconcilerDeps := services.ReconcilerDeps{
		Registry:   registry,
		Translator: ngsild.NewTranslator(),
		Store:      store,
		Audit:      store,
		Logger:     logger,
	}

	var discovery *services.DiscoveryService
	if cfg.Discovery.Enabled {
		emb, err := embedder.NewEmbedder(cfg.Discovery.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		index, err := qdrant.NewRepository(cfg.Discovery.Qdrant)
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer index.Close()

		if err := index.EnsureCollection(ctx, emb.VectorSize()); err != nil {
			return fmt.Errorf("ensuring discovery collection: %w", err)
		}

		discovery = services.NewDiscoveryService(emb, index)
		reconcilerDeps.Indexer = discovery
	}

	ids := entities.NewIdentifiers(cfg.Catalog.OrganizationID, cfg.Catalog.DomainID)
	reconciler := services.NewReconciler(services.NewDeltaBuilder(ids, cfg.Catalog.ContextBrokerURL), reconcilerDeps)

	if err := reconciler.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrapping catalog: %w", err)
	}

	defer func() {
		if perr := reconciler.Persist(context.WithoutCancel(ctx)); perr != nil {
			logger.Error("final persist failed", zap.Error(perr))
			if err == nil {
				err = fmt.Errorf("persisting catalog: %w", perr)
			}
		}
	}()

	catalog := services.NewCatalogService(reconciler)
	deps := &Deps{
		Config:  cfg,
		Logger:  logger,
		Catalog: handlers.NewCatalogHandler(reconciler, catalog, store),
		Search:  handlers.NewSearchHandler(discovery, catalog),
		Import:  handlers.NewImportHandler(services.NewImportService(reconciler)),
		Audit:   handlers.NewAuditHandler(store),
	}

	return fn(deps)
}
