package services

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
)

// CatalogService answers read-only questions about the catalog graph.
// It reads through the Reconciler so reads never overlap a mutation.
type CatalogService struct {
	reconciler *Reconciler
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(reconciler *Reconciler) *CatalogService {
	return &CatalogService{
		reconciler: reconciler,
	}
}

// Get returns one data product by its local id.
func (s *CatalogService) Get(_ context.Context, localID string) (*entities.DataProduct, error) {
	var product *entities.DataProduct
	s.reconciler.View(func(g *graph.CatalogGraph) {
		product = productFromGraph(g, s.reconciler.Identifiers(), s.reconciler.Identifiers().DataProduct(localID))
	})
	if product == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrNotFound, localID)
	}
	return product, nil
}

// List returns every data product that is a member of the catalog, sorted by id.
func (s *CatalogService) List(_ context.Context) ([]entities.DataProduct, error) {
	ids := s.reconciler.Identifiers()
	var products []entities.DataProduct

	s.reconciler.View(func(g *graph.CatalogGraph) {
		for _, member := range g.Objects(ids.Catalog(), entities.RelationDataProduct) {
			if member.IsNull() {
				continue
			}
			if p := productFromGraph(g, ids, member.Value); p != nil {
				products = append(products, *p)
			}
		}
	})

	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
	return products, nil
}

// Count returns the number of data products and facts in the catalog.
func (s *CatalogService) Count(_ context.Context) (products int, facts int) {
	s.reconciler.View(func(g *graph.CatalogGraph) {
		products = len(g.Subjects(entities.RelationType, entities.IRI(entities.ClassDataProduct)))
		facts = g.Len()
	})
	return products, facts
}

// Export writes the whole catalog graph to w as N-Quads. It streams a copy so
// a slow writer does not hold up mutations.
func (s *CatalogService) Export(_ context.Context, w io.Writer) error {
	if err := s.reconciler.Snapshot().WriteNQuads(w); err != nil {
		return fmt.Errorf("exporting catalog: %w", err)
	}
	return nil
}

// productFromGraph reconstructs a data product view, or returns nil if iri is
// not a data product in g.
func productFromGraph(g *graph.CatalogGraph, ids entities.Identifiers, iri string) *entities.DataProduct {
	if !g.Has(entities.NewFact(iri, entities.RelationType, entities.IRI(entities.ClassDataProduct))) {
		return nil
	}

	p := &entities.DataProduct{IRI: iri}
	if localID, ok := ids.DataProductLocalID(iri); ok {
		p.ID = localID
	}
	if id, ok := g.Object(iri, entities.RelationIdentifier); ok {
		p.ID = id.Value
	}
	if title, ok := g.Object(iri, entities.RelationTitle); ok {
		p.Title = title.Value
	}
	if desc, ok := g.Object(iri, entities.RelationDescription); ok {
		p.Description = desc.Value
	}
	p.Publishers = values(g.Objects(iri, entities.RelationPublisher))
	p.Keywords = values(g.Objects(iri, entities.RelationKeyword))
	p.GlossaryTerms = values(g.Objects(iri, entities.RelationTheme))
	p.Mappings = values(g.Objects(iri, entities.RelationMapping))

	if dist, ok := g.Object(iri, entities.RelationDistribution); ok {
		p.Distribution = dist.Value
		if u, ok := g.Object(dist.Value, entities.RelationAccessURL); ok {
			p.AccessURL = u.Value
		}
		if mt, ok := g.Object(dist.Value, entities.RelationMediaType); ok {
			p.MediaType = mt.Value
		}
	}

	return p
}

func values(terms []entities.Term) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Value
	}
	return out
}
