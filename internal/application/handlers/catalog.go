// Package handlers contains application use case handlers shared by the CLI
// and the HTTP API.
package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/ports"
	"github.com/ersonp/datacatalog/internal/domain/services"
)

// CatalogHandler handles catalog mutations and reads.
type CatalogHandler struct {
	reconciler *services.Reconciler
	catalog    *services.CatalogService
	store      ports.SnapshotStore
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(reconciler *services.Reconciler, catalog *services.CatalogService, store ports.SnapshotStore) *CatalogHandler {
	return &CatalogHandler{
		reconciler: reconciler,
		catalog:    catalog,
		store:      store,
	}
}

// RegisterResult identifies a registered data product.
type RegisterResult struct {
	ID  string `json:"id"`
	IRI string `json:"iri"`
}

// Register adds a data product to the catalog.
func (h *CatalogHandler) Register(ctx context.Context, req *entities.Registration) (*RegisterResult, error) {
	iri, err := h.reconciler.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("registering data product: %w", err)
	}
	return &RegisterResult{ID: req.ID, IRI: iri}, nil
}

// Delete removes a data product from the catalog.
func (h *CatalogHandler) Delete(ctx context.Context, id string) error {
	if err := h.reconciler.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting data product: %w", err)
	}
	return nil
}

// Get returns one data product.
func (h *CatalogHandler) Get(ctx context.Context, id string) (*entities.DataProduct, error) {
	return h.catalog.Get(ctx, id)
}

// List returns every data product in the catalog.
func (h *CatalogHandler) List(ctx context.Context) ([]entities.DataProduct, error) {
	return h.catalog.List(ctx)
}

// Export writes the catalog graph as N-Quads.
func (h *CatalogHandler) Export(ctx context.Context, w io.Writer) error {
	return h.catalog.Export(ctx, w)
}

// Status summarizes the catalog and its persisted snapshot.
type Status struct {
	CatalogID string                 `json:"catalog_id"`
	Products  int                    `json:"products"`
	Facts     int                    `json:"facts"`
	Snapshot  *entities.SnapshotInfo `json:"snapshot,omitempty"`
}

// Status returns catalog counts and snapshot metadata. Snapshot is nil
// before the first persist.
func (h *CatalogHandler) Status(ctx context.Context) (*Status, error) {
	products, facts := h.catalog.Count(ctx)
	catalogID := h.reconciler.CatalogID()

	info, err := h.store.Info(ctx, catalogID)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot info: %w", err)
	}

	return &Status{
		CatalogID: catalogID,
		Products:  products,
		Facts:     facts,
		Snapshot:  info,
	}, nil
}
