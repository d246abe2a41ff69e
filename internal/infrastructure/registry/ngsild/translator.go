package ngsild

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
	"github.com/ersonp/datacatalog/internal/domain/ports"
)

// datasetPrefix prefixes the datasetId of multi-instance attributes.
const datasetPrefix = "urn:ngsi-ld:Dataset:"

// Translator maps catalog graphs to NGSI-LD entities.
//
// Relations in the replace list become one Relationship whose object is the
// full member list, so an upsert overwrites the registry's membership. The
// null sentinel is sent as the object of an otherwise empty relation. Other
// relations become one instance per value; when a relation has several
// values each instance carries a datasetId derived from its value, so
// upserting the same value twice is idempotent.
type Translator struct{}

// NewTranslator creates a Translator.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate groups the facts of g by subject, in first-seen order. Every
// subject must have at least one rdf:type fact.
func (t *Translator) Translate(g *graph.CatalogGraph, replace []entities.Relation) ([]ports.RegistryEntity, error) {
	var subjects []string
	bySubject := make(map[string][]entities.Fact)
	for _, f := range g.Facts() {
		if _, ok := bySubject[f.Subject]; !ok {
			subjects = append(subjects, f.Subject)
		}
		bySubject[f.Subject] = append(bySubject[f.Subject], f)
	}

	out := make([]ports.RegistryEntity, 0, len(subjects))
	for _, s := range subjects {
		e, err := translateEntity(s, bySubject[s], replace)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func translateEntity(id string, facts []entities.Fact, replace []entities.Relation) (Entity, error) {
	e := Entity{ID: id}

	var relations []entities.Relation
	values := make(map[entities.Relation][]entities.Term)
	for _, f := range facts {
		if f.Relation == entities.RelationType {
			e.Types = append(e.Types, f.Object.Value)
			continue
		}
		if _, ok := values[f.Relation]; !ok {
			relations = append(relations, f.Relation)
		}
		values[f.Relation] = append(values[f.Relation], f.Object)
	}
	if len(e.Types) == 0 {
		return Entity{}, fmt.Errorf("entity %s has no type", id)
	}

	for _, rel := range relations {
		attr, err := translateAttribute(rel, values[rel], rel.IsReplace(replace))
		if err != nil {
			return Entity{}, fmt.Errorf("entity %s: %w", id, err)
		}
		e.Attributes = append(e.Attributes, attr)
	}
	return e, nil
}

func translateAttribute(rel entities.Relation, terms []entities.Term, replace bool) (Attribute, error) {
	attr := Attribute{Name: string(rel)}

	if replace {
		objects := make([]string, 0, len(terms))
		for _, t := range terms {
			if !t.IsIRI() {
				return Attribute{}, fmt.Errorf("relation %s holds literal %s", rel.LocalName(), t)
			}
			objects = append(objects, t.Value)
		}
		inst := Instance{Type: KindRelationship}
		if len(objects) == 1 {
			inst.Object = objects[0]
		} else {
			inst.Object = objects
		}
		attr.Instances = []Instance{inst}
		return attr, nil
	}

	for _, t := range terms {
		inst := instance(t)
		if len(terms) > 1 {
			inst.DatasetID = datasetID(rel, t)
		}
		attr.Instances = append(attr.Instances, inst)
	}
	return attr, nil
}

func instance(t entities.Term) Instance {
	if t.IsIRI() {
		return Instance{Type: KindRelationship, Object: t.Value}
	}
	return Instance{Type: KindProperty, Value: t.Value}
}

func datasetID(rel entities.Relation, t entities.Term) string {
	return datasetPrefix + uuid.NewSHA1(uuid.NameSpaceURL, []byte(string(rel)+" "+t.String())).String()
}
