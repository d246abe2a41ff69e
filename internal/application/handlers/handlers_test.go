package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/mocks"
	"github.com/ersonp/datacatalog/internal/domain/services"
)

type fixture struct {
	registry   *mocks.Registry
	store      *mocks.SnapshotStore
	audit      *mocks.AuditLog
	index      *mocks.ProductIndex
	reconciler *services.Reconciler
	catalog    *services.CatalogService
	discovery  *services.DiscoveryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		registry: mocks.NewRegistry(),
		store:    mocks.NewSnapshotStore(),
		audit:    &mocks.AuditLog{},
		index:    mocks.NewProductIndex(),
	}
	f.discovery = services.NewDiscoveryService(&mocks.Embedder{EmbeddingResult: []float32{0.1}}, f.index)
	f.reconciler = services.NewReconciler(
		services.NewDeltaBuilder(entities.NewIdentifiers("ACME", "default"), "http://broker:1026"),
		services.ReconcilerDeps{
			Registry:   f.registry,
			Translator: &mocks.Translator{},
			Store:      f.store,
			Audit:      f.audit,
			Indexer:    f.discovery,
			Logger:     zaptest.NewLogger(t),
		},
	)
	f.catalog = services.NewCatalogService(f.reconciler)

	require.NoError(t, f.reconciler.Bootstrap(t.Context()))
	return f
}

func registration(id string) *entities.Registration {
	return &entities.Registration{
		ID:            id,
		Name:          "Product " + id,
		Description:   "Description of " + id,
		Owner:         "alice",
		Keywords:      []string{"sensors"},
		GlossaryTerms: []string{"https://example.org/glossary/AirQuality"},
	}
}
