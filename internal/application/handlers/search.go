package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/datacatalog/internal/domain/ports"
	"github.com/ersonp/datacatalog/internal/domain/services"
)

// ErrDiscoveryDisabled is returned by search operations when no discovery
// index is configured.
var ErrDiscoveryDisabled = errors.New("discovery index is disabled")

// SearchHandler handles semantic data product discovery.
type SearchHandler struct {
	discovery *services.DiscoveryService
	catalog   *services.CatalogService
}

// NewSearchHandler creates a new search handler. discovery may be nil when
// the index is disabled.
func NewSearchHandler(discovery *services.DiscoveryService, catalog *services.CatalogService) *SearchHandler {
	return &SearchHandler{
		discovery: discovery,
		catalog:   catalog,
	}
}

// Enabled reports whether a discovery index is configured.
func (h *SearchHandler) Enabled() bool {
	return h.discovery != nil
}

// SearchResult contains the result of a search.
type SearchResult struct {
	Query string            `json:"query"`
	Hits  []ports.SearchHit `json:"hits"`
}

// Handle searches for data products matching the query.
func (h *SearchHandler) Handle(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if h.discovery == nil {
		return nil, ErrDiscoveryDisabled
	}

	hits, err := h.discovery.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching data products: %w", err)
	}

	return &SearchResult{
		Query: query,
		Hits:  hits,
	}, nil
}

// Reindex rebuilds the index from the catalog graph and returns the number
// of indexed products.
func (h *SearchHandler) Reindex(ctx context.Context) (int, error) {
	if h.discovery == nil {
		return 0, ErrDiscoveryDisabled
	}

	products, err := h.catalog.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing data products: %w", err)
	}

	n, err := h.discovery.Reindex(ctx, products)
	if err != nil {
		return n, fmt.Errorf("reindexing: %w", err)
	}
	return n, nil
}
