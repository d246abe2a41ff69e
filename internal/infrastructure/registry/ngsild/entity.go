// Package ngsild talks to an NGSI-LD context broker acting as the catalog
// registry: it translates catalog graphs into NGSI-LD entities and pushes,
// looks up and deletes them over HTTP.
package ngsild

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NGSI-LD attribute kinds.
const (
	KindProperty     = "Property"
	KindRelationship = "Relationship"
)

// Entity is an NGSI-LD entity in normalized form. Types and attribute names
// are expanded IRIs, so no JSON-LD @context is needed beyond the core one.
type Entity struct {
	ID         string
	Types      []string
	Attributes []Attribute
}

// Attribute is a named attribute with one or more instances. Instances of a
// multi-instance attribute are told apart by DatasetID.
type Attribute struct {
	Name      string
	Instances []Instance
}

// Instance is one value of an attribute.
type Instance struct {
	Type      string `json:"type"`
	Value     any    `json:"value,omitempty"`
	Object    any    `json:"object,omitempty"`
	DatasetID string `json:"datasetId,omitempty"`
}

// EntityID returns the entity identifier.
func (e Entity) EntityID() string {
	return e.ID
}

// Attribute returns the attribute with the given name.
func (e Entity) Attribute(name string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// MarshalJSON writes the entity with a scalar type and scalar attributes when
// they hold a single value, arrays otherwise.
func (e Entity) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	stream.WriteObjectField("id")
	stream.WriteString(e.ID)
	stream.WriteMore()
	stream.WriteObjectField("type")
	if len(e.Types) == 1 {
		stream.WriteString(e.Types[0])
	} else {
		stream.WriteVal(e.Types)
	}

	for _, a := range e.Attributes {
		stream.WriteMore()
		stream.WriteObjectField(a.Name)
		if len(a.Instances) == 1 {
			stream.WriteVal(a.Instances[0])
		} else {
			stream.WriteVal(a.Instances)
		}
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, fmt.Errorf("encoding entity %s: %w", e.ID, stream.Error)
	}
	return append([]byte(nil), stream.Buffer()...), nil
}
