package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerm_Kinds(t *testing.T) {
	tests := []struct {
		name    string
		term    Term
		isZero  bool
		isIRI   bool
		isNull  bool
		printed string
	}{
		{
			name:    "iri",
			term:    IRI("urn:ACME"),
			isIRI:   true,
			printed: "<urn:ACME>",
		},
		{
			name:    "literal",
			term:    Literal("hello"),
			printed: `"hello"`,
		},
		{
			name:    "wildcard",
			term:    Term{},
			isZero:  true,
			printed: "*",
		},
		{
			name:    "null sentinel",
			term:    Null,
			isIRI:   true,
			isNull:  true,
			printed: "<urn:ngsi-ld:null>",
		},
		{
			name:    "literal with null text is not the sentinel",
			term:    Literal(NullIRI),
			printed: `"urn:ngsi-ld:null"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isZero, tt.term.IsZero())
			assert.Equal(t, tt.isIRI, tt.term.IsIRI())
			assert.Equal(t, tt.isNull, tt.term.IsNull())
			assert.Equal(t, tt.printed, tt.term.String())
		})
	}
}

func TestFact_Comparable(t *testing.T) {
	a := NewFact("urn:x", RelationKeyword, Literal("k"))
	b := NewFact("urn:x", RelationKeyword, Literal("k"))
	c := NewFact("urn:x", RelationKeyword, IRI("k"))

	set := map[Fact]struct{}{a: {}, b: {}, c: {}}
	assert.Len(t, set, 2)
}

func TestRelation_LocalName(t *testing.T) {
	assert.Equal(t, "servesDataProduct", RelationServesDataProduct.LocalName())
	assert.Equal(t, "type", RelationType.LocalName())
	assert.Equal(t, "identifier", RelationIdentifier.LocalName())
	assert.Equal(t, "inScheme", RelationInScheme.LocalName())
	assert.Equal(t, "DataProduct", LocalName(ClassDataProduct))
}

func TestRelation_IsReplace(t *testing.T) {
	assert.True(t, RelationDataProduct.IsReplace(ReplaceRelations))
	assert.True(t, RelationServesDataProduct.IsReplace(ReplaceRelations))
	assert.False(t, RelationKeyword.IsReplace(ReplaceRelations))
	assert.False(t, RelationDataProduct.IsReplace(nil))
}
