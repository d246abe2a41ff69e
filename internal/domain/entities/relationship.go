package entities

import "strings"

// Namespaces used by the catalog vocabulary.
const (
	NamespaceRDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceDCAT    = "http://www.w3.org/ns/dcat#"
	NamespaceDCTerms = "http://purl.org/dc/terms/"
	NamespaceSKOS    = "http://www.w3.org/2004/02/skos/core#"
	NamespaceAerDCAT = "https://w3id.org/aerOS/data-catalog#"
	NamespaceAerOS   = "https://w3id.org/aerOS/continuum#"
)

// DefaultPrefixes is the prefix table attached to new catalog graphs.
// It only affects external serialization.
var DefaultPrefixes = map[string]string{
	"rdf":     NamespaceRDF,
	"dcat":    NamespaceDCAT,
	"dcterms": NamespaceDCTerms,
	"skos":    NamespaceSKOS,
	"aerdcat": NamespaceAerDCAT,
	"aeros":   NamespaceAerOS,
}

// Relation is the identifier of an edge or attribute in the catalog graph.
type Relation string

// Catalog relations.
const (
	RelationType              Relation = NamespaceRDF + "type"
	RelationDomain            Relation = NamespaceAerOS + "domain"
	RelationThemeTaxonomy     Relation = NamespaceDCAT + "themeTaxonomy"
	RelationContextBroker     Relation = NamespaceAerDCAT + "contextBroker"
	RelationEndpointURL       Relation = NamespaceDCAT + "endpointURL"
	RelationConformsTo        Relation = NamespaceDCTerms + "conformsTo"
	RelationDataProduct       Relation = NamespaceAerDCAT + "dataProduct"
	RelationServesDataProduct Relation = NamespaceAerDCAT + "servesDataProduct"
	RelationDistribution      Relation = NamespaceDCAT + "distribution"
	RelationAccessURL         Relation = NamespaceDCAT + "accessURL"
	RelationAccessService     Relation = NamespaceDCAT + "accessService"
	RelationMediaType         Relation = NamespaceDCAT + "mediaType"
	RelationIdentifier        Relation = NamespaceDCTerms + "identifier"
	RelationTitle             Relation = NamespaceDCTerms + "title"
	RelationDescription       Relation = NamespaceDCTerms + "description"
	RelationPublisher         Relation = NamespaceDCTerms + "publisher"
	RelationKeyword           Relation = NamespaceDCAT + "keyword"
	RelationTheme             Relation = NamespaceDCAT + "theme"
	RelationInScheme          Relation = NamespaceSKOS + "inScheme"
	RelationMapping           Relation = NamespaceAerDCAT + "mapping"
)

// Entity classes used as objects of RelationType.
const (
	ClassCatalog       = NamespaceDCAT + "Catalog"
	ClassDistribution  = NamespaceDCAT + "Distribution"
	ClassConceptScheme = NamespaceSKOS + "ConceptScheme"
	ClassConcept       = NamespaceSKOS + "Concept"
	ClassContextBroker = NamespaceAerDCAT + "ContextBroker"
	ClassDataProduct   = NamespaceAerDCAT + "DataProduct"
)

// ReplaceRelations are the to-many relations the registry overwrites on every
// update. Every push of one of them must carry its complete membership.
var ReplaceRelations = []Relation{
	RelationServesDataProduct,
	RelationDataProduct,
}

// LocalName returns the part of an identifier after the last '#', '/' or ':'.
func LocalName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/:"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	return iri
}

// LocalName returns the relation's short name, e.g. "servesDataProduct".
func (r Relation) LocalName() string {
	return LocalName(string(r))
}

// IsReplace reports whether r is one of the given replace-semantics relations.
func (r Relation) IsReplace(replace []Relation) bool {
	for _, rr := range replace {
		if rr == r {
			return true
		}
	}
	return false
}
