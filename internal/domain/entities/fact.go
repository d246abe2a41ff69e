// Package entities contains core domain data structures.
package entities

import "fmt"

// TermKind distinguishes identifiers from literal scalars in the object
// position of a fact.
type TermKind uint8

const (
	// TermIRI is an identifier (URI/URN) pointing at another node.
	TermIRI TermKind = iota + 1
	// TermLiteral is a plain string scalar.
	TermLiteral
)

// NullIRI is the registry's placeholder for "this relation has no members".
const NullIRI = "urn:ngsi-ld:null"

// Null is the sentinel object used to clear a to-many relation in the registry.
var Null = Term{Kind: TermIRI, Value: NullIRI}

// Term is the object of a fact: either an identifier or a literal.
// The zero Term acts as a wildcard in graph patterns.
type Term struct {
	Kind  TermKind `json:"kind"`
	Value string   `json:"value"`
}

// IRI returns an identifier term.
func IRI(v string) Term {
	return Term{Kind: TermIRI, Value: v}
}

// Literal returns a literal term.
func Literal(v string) Term {
	return Term{Kind: TermLiteral, Value: v}
}

// IsZero reports whether the term is the wildcard.
func (t Term) IsZero() bool {
	return t.Kind == 0
}

// IsIRI reports whether the term is an identifier.
func (t Term) IsIRI() bool {
	return t.Kind == TermIRI
}

// IsNull reports whether the term is the null sentinel.
func (t Term) IsNull() bool {
	return t == Null
}

func (t Term) String() string {
	switch t.Kind {
	case TermIRI:
		return "<" + t.Value + ">"
	case TermLiteral:
		return fmt.Sprintf("%q", t.Value)
	default:
		return "*"
	}
}

// Fact is a single (subject, relation, object) statement in the catalog graph.
// Facts are comparable and used directly as set keys.
type Fact struct {
	Subject  string   `json:"subject"`
	Relation Relation `json:"relation"`
	Object   Term     `json:"object"`
}

// NewFact builds a fact.
func NewFact(subject string, relation Relation, object Term) Fact {
	return Fact{Subject: subject, Relation: relation, Object: object}
}

func (f Fact) String() string {
	return fmt.Sprintf("<%s> <%s> %s", f.Subject, f.Relation, f.Object)
}
