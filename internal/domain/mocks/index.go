package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/ports"
)

// ProductIndex is an in-memory mock of ports.ProductIndex. Search returns the
// stored documents sorted by id with a fixed score.
type ProductIndex struct {
	mu   sync.Mutex
	Docs map[string]ports.ProductDocument
	Err  error

	// Call tracking
	UpsertCallCount int
	DeleteCallCount int
	LastLimit       int
}

// NewProductIndex creates an empty mock index.
func NewProductIndex() *ProductIndex {
	return &ProductIndex{
		Docs: make(map[string]ports.ProductDocument),
	}
}

// Upsert stores the document.
func (m *ProductIndex) Upsert(_ context.Context, doc ports.ProductDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Docs[doc.DataProductID] = doc
	return nil
}

// Delete removes the document. Deleting an absent document reports
// entities.ErrNotFound.
func (m *ProductIndex) Delete(_ context.Context, dataProductID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCallCount++
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Docs[dataProductID]; !ok {
		return entities.ErrNotFound
	}
	delete(m.Docs, dataProductID)
	return nil
}

// Search returns up to limit stored documents.
func (m *ProductIndex) Search(_ context.Context, _ []float32, limit int) ([]ports.SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	hits := make([]ports.SearchHit, 0, len(m.Docs))
	for _, d := range m.Docs {
		hits = append(hits, ports.SearchHit{
			DataProductID: d.DataProductID,
			Title:         d.Title,
			Description:   d.Description,
			Score:         1,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].DataProductID < hits[j].DataProductID
	})
	if limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

// Has reports whether a document is stored.
func (m *ProductIndex) Has(dataProductID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Docs[dataProductID]
	return ok
}
