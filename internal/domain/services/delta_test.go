package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
)

const testBrokerEndpoint = "http://broker.example.org:1026"

func testIdentifiers() entities.Identifiers {
	return entities.NewIdentifiers("ACME", "default")
}

func testRegistration(id string) *entities.Registration {
	return &entities.Registration{
		ID:          id,
		Name:        "Product " + id,
		Description: "Description of " + id,
		Owner:       "alice",
		Keywords:    []string{"sensors", "  ", " air "},
		GlossaryTerms: []string{
			"https://example.org/glossary/AirQuality",
		},
	}
}

func TestDeltaBuilder_Base(t *testing.T) {
	ids := testIdentifiers()
	b := NewDeltaBuilder(ids, testBrokerEndpoint)

	d := b.Base()

	require.True(t, d.HasPush())
	assert.Empty(t, d.Replace)
	for _, e := range entities.BaseEntities {
		assert.True(t, d.Facts.Has(entities.NewFact(e.ID(ids), entities.RelationType, entities.IRI(e.Class))), e.Name)
	}
	assert.True(t, d.Facts.Has(entities.NewFact(ids.Catalog(), entities.RelationThemeTaxonomy, entities.IRI(ids.Glossary()))))
	assert.True(t, d.Facts.Has(entities.NewFact(ids.Catalog(), entities.RelationContextBroker, entities.IRI(ids.ContextBroker()))))
	assert.True(t, d.Facts.Has(entities.NewFact(ids.ContextBroker(), entities.RelationEndpointURL, entities.IRI(testBrokerEndpoint))))
	assert.True(t, d.Facts.Has(entities.NewFact(ids.ContextBroker(), entities.RelationConformsTo, entities.IRI(entities.BrokerConformance))))
	assert.Empty(t, d.Facts.Objects(ids.Catalog(), entities.RelationDataProduct))
}

func TestDeltaBuilder_Registration(t *testing.T) {
	ids := testIdentifiers()
	b := NewDeltaBuilder(ids, testBrokerEndpoint)
	dp := ids.DataProduct("air")
	dist := ids.Distribution("air")

	d, err := b.Registration(graph.New(), testRegistration("air"))
	require.NoError(t, err)

	g := d.Facts
	assert.Equal(t, entities.ReplaceRelations, d.Replace)
	assert.True(t, g.Has(entities.NewFact(dp, entities.RelationType, entities.IRI(entities.ClassDataProduct))))
	assert.True(t, g.Has(entities.NewFact(dp, entities.RelationIdentifier, entities.Literal("air"))))
	assert.True(t, g.Has(entities.NewFact(dp, entities.RelationTitle, entities.Literal("Product air"))))

	assert.ElementsMatch(t,
		[]entities.Term{entities.IRI("urn:ACME:User:alice"), entities.IRI("urn:ACME")},
		g.Objects(dp, entities.RelationPublisher))
	assert.Equal(t,
		[]entities.Term{entities.Literal("sensors"), entities.Literal("air")},
		g.Objects(dp, entities.RelationKeyword))

	term := "https://example.org/glossary/AirQuality"
	assert.True(t, g.Has(entities.NewFact(term, entities.RelationType, entities.IRI(entities.ClassConcept))))
	assert.True(t, g.Has(entities.NewFact(term, entities.RelationInScheme, entities.IRI(ids.Glossary()))))
	assert.True(t, g.Has(entities.NewFact(dp, entities.RelationTheme, entities.IRI(term))))

	assert.True(t, g.Has(entities.NewFact(dp, entities.RelationDistribution, entities.IRI(dist))))
	assert.True(t, g.Has(entities.NewFact(dist, entities.RelationAccessURL, entities.IRI(testBrokerEndpoint))))
	assert.True(t, g.Has(entities.NewFact(dist, entities.RelationMediaType, entities.IRI(entities.MediaTypeJSONLD))))
	assert.True(t, g.Has(entities.NewFact(dist, entities.RelationAccessService, entities.IRI(ids.ContextBroker()))))

	assert.Equal(t, []entities.Term{entities.IRI(dp)}, g.Objects(ids.Catalog(), entities.RelationDataProduct))
	assert.Equal(t, []entities.Term{entities.IRI(dp)}, g.Objects(ids.ContextBroker(), entities.RelationServesDataProduct))
}

func TestDeltaBuilder_Registration_AbsoluteOwner(t *testing.T) {
	ids := testIdentifiers()
	b := NewDeltaBuilder(ids, testBrokerEndpoint)
	req := testRegistration("air")
	req.Owner = "https://example.org/people/alice"

	d, err := b.Registration(graph.New(), req)
	require.NoError(t, err)

	assert.Contains(t, d.Facts.Objects(ids.DataProduct("air"), entities.RelationPublisher),
		entities.IRI("https://example.org/people/alice"))
}

func TestDeltaBuilder_Registration_ReplaysMembers(t *testing.T) {
	ids := testIdentifiers()
	b := NewDeltaBuilder(ids, testBrokerEndpoint)
	existing := ids.DataProduct("existing")

	current := graph.FromFacts(
		entities.NewFact(ids.Catalog(), entities.RelationDataProduct, entities.IRI(existing)),
		entities.NewFact(ids.Catalog(), entities.RelationDataProduct, entities.Null),
		entities.NewFact(ids.ContextBroker(), entities.RelationServesDataProduct, entities.IRI(existing)),
	)

	d, err := b.Registration(current, testRegistration("new"))
	require.NoError(t, err)

	want := []entities.Term{entities.IRI(existing), entities.IRI(ids.DataProduct("new"))}
	assert.Equal(t, want, d.Facts.Objects(ids.Catalog(), entities.RelationDataProduct))
	assert.Equal(t, want, d.Facts.Objects(ids.ContextBroker(), entities.RelationServesDataProduct))
	assert.True(t, d.Facts.Has(entities.NewFact(ids.Catalog(), entities.RelationType, entities.IRI(entities.ClassCatalog))))
}

func TestDeltaBuilder_Registration_Invalid(t *testing.T) {
	b := NewDeltaBuilder(testIdentifiers(), testBrokerEndpoint)

	_, err := b.Registration(graph.New(), &entities.Registration{ID: "x"})

	require.ErrorIs(t, err, entities.ErrInvalidRequest)
}

func TestDeltaBuilder_Deletion(t *testing.T) {
	ids := testIdentifiers()
	b := NewDeltaBuilder(ids, testBrokerEndpoint)
	dp := ids.DataProduct("air")
	dist := ids.Distribution("air")

	d := b.Deletion("air")

	assert.False(t, d.HasPush())
	assert.Equal(t, []string{dp, dist}, d.DeleteIDs)
	assert.Contains(t, d.Removals, graph.Pattern{Subject: dp})
	assert.Contains(t, d.Removals, graph.Pattern{Subject: dist})
	assert.Contains(t, d.Removals, graph.Pattern{Subject: ids.Catalog(), Relation: entities.RelationDataProduct, Object: entities.IRI(dp)})
	assert.Contains(t, d.Removals, graph.Pattern{Subject: ids.ContextBroker(), Relation: entities.RelationServesDataProduct, Object: entities.IRI(dp)})
}

func TestDeltaBuilder_Cleanup(t *testing.T) {
	ids := testIdentifiers()
	b := NewDeltaBuilder(ids, testBrokerEndpoint)
	remaining := ids.DataProduct("kept")

	t.Run("remaining members are replayed", func(t *testing.T) {
		current := graph.FromFacts(
			entities.NewFact(ids.Catalog(), entities.RelationDataProduct, entities.IRI(remaining)),
			entities.NewFact(ids.ContextBroker(), entities.RelationServesDataProduct, entities.IRI(remaining)),
		)

		d := b.Cleanup(current)

		assert.Equal(t, entities.ReplaceRelations, d.Replace)
		assert.Equal(t, []entities.Term{entities.IRI(remaining)}, d.Facts.Objects(ids.Catalog(), entities.RelationDataProduct))
		assert.Equal(t, []entities.Term{entities.IRI(remaining)}, d.Facts.Objects(ids.ContextBroker(), entities.RelationServesDataProduct))
	})

	t.Run("empty relations get the null sentinel", func(t *testing.T) {
		d := b.Cleanup(graph.New())

		assert.Equal(t, []entities.Term{entities.Null}, d.Facts.Objects(ids.Catalog(), entities.RelationDataProduct))
		assert.Equal(t, []entities.Term{entities.Null}, d.Facts.Objects(ids.ContextBroker(), entities.RelationServesDataProduct))
	})
}

func TestDelta_ApplyTo(t *testing.T) {
	ids := testIdentifiers()
	b := NewDeltaBuilder(ids, testBrokerEndpoint)
	g := graph.New()
	b.Base().ApplyTo(g)
	baseLen := g.Len()

	reg, err := b.Registration(g, testRegistration("air"))
	require.NoError(t, err)
	reg.ApplyTo(g)
	require.Greater(t, g.Len(), baseLen)

	b.Deletion("air").ApplyTo(g)

	dp := ids.DataProduct("air")
	for f := range g.Query(graph.AnySubject, graph.AnyRelation, entities.IRI(dp)) {
		t.Errorf("fact still references deleted data product: %s", f)
	}
	assert.Empty(t, g.Objects(dp, graph.AnyRelation))
	assert.Empty(t, g.Objects(ids.Distribution("air"), graph.AnyRelation))
}
