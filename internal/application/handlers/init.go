package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/datacatalog/internal/domain/ports"
	"github.com/ersonp/datacatalog/internal/infrastructure/config"
)

// SchemaInitializer creates the snapshot store's schema.
type SchemaInitializer interface {
	EnsureSchema(ctx context.Context) error
}

// InitHandler provisions the storage a freshly written config points at.
type InitHandler struct {
	schema            SchemaInitializer
	collectionManager ports.CollectionManager
	vectorSize        uint64
}

// NewInitHandler creates a new init handler. collectionManager may be nil
// when discovery is disabled.
func NewInitHandler(schema SchemaInitializer, collectionManager ports.CollectionManager, vectorSize uint64) *InitHandler {
	return &InitHandler{
		schema:            schema,
		collectionManager: collectionManager,
		vectorSize:        vectorSize,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	DatabasePath   string
	CollectionName string
}

// Handle creates the snapshot schema and, when discovery is enabled, the
// index collection.
func (h *InitHandler) Handle(ctx context.Context, cfg *config.Config) (*InitResult, error) {
	if err := h.schema.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("creating snapshot schema: %w", err)
	}

	result := &InitResult{DatabasePath: cfg.SQLite.Path}

	if h.collectionManager != nil {
		if err := h.collectionManager.EnsureCollection(ctx, h.vectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
		result.CollectionName = cfg.Discovery.Qdrant.Collection
	}

	return result, nil
}
