package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/ports"
)

// DefaultSearchLimit is the default number of results to return.
const DefaultSearchLimit = 10

// DiscoveryService keeps the semantic discovery index in step with the
// catalog and answers free-text searches against it.
type DiscoveryService struct {
	embedder ports.Embedder
	index    ports.ProductIndex
}

// NewDiscoveryService creates a new discovery service.
func NewDiscoveryService(embedder ports.Embedder, index ports.ProductIndex) *DiscoveryService {
	return &DiscoveryService{
		embedder: embedder,
		index:    index,
	}
}

// IndexProduct embeds a data product and stores it in the index.
func (s *DiscoveryService) IndexProduct(ctx context.Context, p *entities.DataProduct) error {
	embedding, err := s.embedder.Embed(ctx, p.SearchText())
	if err != nil {
		return fmt.Errorf("generating embedding for %s: %w", p.ID, err)
	}
	if err := s.index.Upsert(ctx, document(p, embedding)); err != nil {
		return fmt.Errorf("indexing %s: %w", p.ID, err)
	}
	return nil
}

// RemoveProduct removes a data product from the index.
func (s *DiscoveryService) RemoveProduct(ctx context.Context, localID string) error {
	if err := s.index.Delete(ctx, localID); err != nil {
		return fmt.Errorf("removing %s from index: %w", localID, err)
	}
	return nil
}

// Search finds data products semantically similar to the query.
func (s *DiscoveryService) Search(ctx context.Context, query string, limit int) ([]ports.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", entities.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	hits, err := s.index.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching data products: %w", err)
	}

	return hits, nil
}

// Reindex embeds all products in one batch and stores them. Returns the
// number of indexed products.
func (s *DiscoveryService) Reindex(ctx context.Context, products []entities.DataProduct) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	texts := make([]string, len(products))
	for i := range products {
		texts[i] = products[i].SearchText()
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("generating embeddings: %w", err)
	}
	if len(embeddings) != len(products) {
		return 0, fmt.Errorf("embedder returned %d embeddings for %d products", len(embeddings), len(products))
	}

	for i := range products {
		if err := s.index.Upsert(ctx, document(&products[i], embeddings[i])); err != nil {
			return i, fmt.Errorf("indexing %s: %w", products[i].ID, err)
		}
	}
	return len(products), nil
}

func document(p *entities.DataProduct, embedding []float32) ports.ProductDocument {
	return ports.ProductDocument{
		DataProductID: p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Keywords:      p.Keywords,
		Embedding:     embedding,
	}
}
