package services

import (
	"strings"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
)

// Delta is the change one catalog operation applies locally and pushes to
// the registry.
type Delta struct {
	// Facts are added to the local graph and pushed as an upsert. For
	// replace-semantics relations they carry the complete membership.
	Facts *graph.CatalogGraph
	// Replace lists the relations pushed with full membership.
	Replace []entities.Relation
	// Removals are removed from the local graph.
	Removals []graph.Pattern
	// DeleteIDs are deleted from the registry before Facts are pushed.
	DeleteIDs []string
}

// ApplyTo mutates g: removals first, then additions.
func (d *Delta) ApplyTo(g *graph.CatalogGraph) {
	g.RemoveAll(d.Removals...)
	g.UnionInPlace(d.Facts)
}

// HasPush reports whether the delta carries anything to upsert.
func (d *Delta) HasPush() bool {
	return d.Facts != nil && d.Facts.Len() > 0
}

// membership is a to-many relation and the entity that owns it.
type membership struct {
	owner    string
	class    string
	relation entities.Relation
}

// DeltaBuilder computes deltas for registrations, deletions and bootstrap.
type DeltaBuilder struct {
	ids            entities.Identifiers
	brokerEndpoint string
}

// NewDeltaBuilder creates a DeltaBuilder for one catalog deployment.
// brokerEndpoint is the URL at which the context broker serves data.
func NewDeltaBuilder(ids entities.Identifiers, brokerEndpoint string) *DeltaBuilder {
	return &DeltaBuilder{
		ids:            ids,
		brokerEndpoint: strings.TrimSpace(brokerEndpoint),
	}
}

// Identifiers returns the identifiers the builder composes.
func (b *DeltaBuilder) Identifiers() entities.Identifiers {
	return b.ids
}

func (b *DeltaBuilder) memberships() []membership {
	return []membership{
		{owner: b.ids.ContextBroker(), class: entities.ClassContextBroker, relation: entities.RelationServesDataProduct},
		{owner: b.ids.Catalog(), class: entities.ClassCatalog, relation: entities.RelationDataProduct},
	}
}

// Base returns the facts of the entities created at first startup:
// catalog, business glossary and context broker descriptor.
func (b *DeltaBuilder) Base() *Delta {
	catalog := b.ids.Catalog()
	glossary := b.ids.Glossary()
	broker := b.ids.ContextBroker()
	domain := entities.IRI(b.ids.Domain())

	g := graph.New()
	for _, e := range entities.BaseEntities {
		g.Add(entities.NewFact(e.ID(b.ids), entities.RelationType, entities.IRI(e.Class)))
	}
	g.AddAll(
		entities.NewFact(catalog, entities.RelationDomain, domain),
		entities.NewFact(catalog, entities.RelationPublisher, entities.IRI(b.ids.Organization())),
		entities.NewFact(catalog, entities.RelationThemeTaxonomy, entities.IRI(glossary)),
		entities.NewFact(catalog, entities.RelationContextBroker, entities.IRI(broker)),
		entities.NewFact(broker, entities.RelationDomain, domain),
		entities.NewFact(broker, entities.RelationEndpointURL, entities.IRI(b.brokerEndpoint)),
		entities.NewFact(broker, entities.RelationConformsTo, entities.IRI(entities.BrokerConformance)),
	)

	return &Delta{Facts: g}
}

// Registration computes the delta that adds a data product. current is the
// graph before the change; its membership of the replace-semantics relations
// is replayed into the delta so the registry receives the complete sets.
func (b *DeltaBuilder) Registration(current *graph.CatalogGraph, req *entities.Registration) (*Delta, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dp := b.ids.DataProduct(req.ID)
	dist := b.ids.Distribution(req.ID)
	broker := b.ids.ContextBroker()
	glossary := entities.IRI(b.ids.Glossary())

	g := graph.New()
	g.AddAll(
		entities.NewFact(dp, entities.RelationType, entities.IRI(entities.ClassDataProduct)),
		entities.NewFact(dp, entities.RelationIdentifier, entities.Literal(req.ID)),
		entities.NewFact(dp, entities.RelationTitle, entities.Literal(req.Name)),
		entities.NewFact(dp, entities.RelationDescription, entities.Literal(req.Description)),
		entities.NewFact(dp, entities.RelationPublisher, entities.IRI(b.ids.User(req.Owner))),
		entities.NewFact(dp, entities.RelationPublisher, entities.IRI(b.ids.Organization())),
	)

	for _, kw := range req.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			g.Add(entities.NewFact(dp, entities.RelationKeyword, entities.Literal(kw)))
		}
	}

	for _, t := range req.GlossaryTerms {
		term := strings.TrimSpace(t)
		g.AddAll(
			entities.NewFact(term, entities.RelationType, entities.IRI(entities.ClassConcept)),
			entities.NewFact(term, entities.RelationInScheme, glossary),
			entities.NewFact(dp, entities.RelationTheme, entities.IRI(term)),
		)
	}

	g.AddAll(
		entities.NewFact(dist, entities.RelationType, entities.IRI(entities.ClassDistribution)),
		entities.NewFact(dist, entities.RelationAccessURL, entities.IRI(b.brokerEndpoint)),
		entities.NewFact(dist, entities.RelationMediaType, entities.IRI(entities.MediaTypeJSONLD)),
		entities.NewFact(dp, entities.RelationDistribution, entities.IRI(dist)),
		entities.NewFact(dist, entities.RelationAccessService, entities.IRI(broker)),
	)

	for _, m := range req.Mappings {
		g.Add(entities.NewFact(dp, entities.RelationMapping, entities.IRI(strings.TrimSpace(m))))
	}

	for _, m := range b.memberships() {
		g.Add(entities.NewFact(m.owner, entities.RelationType, entities.IRI(m.class)))
		for _, member := range members(current, m) {
			g.Add(entities.NewFact(m.owner, m.relation, member))
		}
		g.Add(entities.NewFact(m.owner, m.relation, entities.IRI(dp)))
	}

	return &Delta{Facts: g, Replace: entities.ReplaceRelations}, nil
}

// Deletion computes the local removals and registry deletions for a data
// product. The relationship cleanup is computed afterwards by Cleanup, from
// the graph with the removals applied.
func (b *DeltaBuilder) Deletion(localID string) *Delta {
	dp := b.ids.DataProduct(localID)
	dist := b.ids.Distribution(localID)

	removals := []graph.Pattern{
		{Subject: dp},
		{Subject: dist},
	}
	for _, m := range b.memberships() {
		removals = append(removals, graph.Pattern{Subject: m.owner, Relation: m.relation, Object: entities.IRI(dp)})
	}

	return &Delta{
		Removals:  removals,
		DeleteIDs: []string{dp, dist},
	}
}

// Cleanup computes the push that re-synchronizes the replace-semantics
// relations with the registry after a removal. A relation left without
// members is set to the null sentinel, since the registry cannot tell an
// absent relation from an empty one.
func (b *DeltaBuilder) Cleanup(current *graph.CatalogGraph) *Delta {
	g := graph.New()
	for _, m := range b.memberships() {
		g.Add(entities.NewFact(m.owner, entities.RelationType, entities.IRI(m.class)))
		remaining := members(current, m)
		if len(remaining) == 0 {
			g.Add(entities.NewFact(m.owner, m.relation, entities.Null))
			continue
		}
		for _, member := range remaining {
			g.Add(entities.NewFact(m.owner, m.relation, member))
		}
	}
	return &Delta{Facts: g, Replace: entities.ReplaceRelations}
}

// members returns the current members of a to-many relation, derived by
// scanning the graph.
func members(g *graph.CatalogGraph, m membership) []entities.Term {
	var out []entities.Term
	for _, o := range g.Objects(m.owner, m.relation) {
		if !o.IsNull() {
			out = append(out, o)
		}
	}
	return out
}
