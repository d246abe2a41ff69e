// Package graph provides the in-memory catalog graph: a set of facts with
// deterministic insertion order, pattern queries, and set union.
package graph

import (
	"iter"
	"maps"

	"github.com/ersonp/datacatalog/internal/domain/entities"
)

// Wildcards for Query and Remove patterns.
const (
	AnySubject  = ""
	AnyRelation = entities.Relation("")
)

// AnyObject matches every object.
var AnyObject = entities.Term{}

// Pattern selects facts; empty fields are wildcards.
type Pattern struct {
	Subject  string
	Relation entities.Relation
	Object   entities.Term
}

// CatalogGraph is a set of facts plus a namespace-prefix table.
// It is not safe for concurrent use; owners guard it themselves.
type CatalogGraph struct {
	prefixes map[string]string
	facts    []entities.Fact
	index    map[entities.Fact]struct{}
}

// New creates an empty graph bound to the default prefixes.
func New() *CatalogGraph {
	return &CatalogGraph{
		prefixes: maps.Clone(entities.DefaultPrefixes),
		index:    make(map[entities.Fact]struct{}),
	}
}

// FromFacts creates a graph holding the given facts, in order.
func FromFacts(facts ...entities.Fact) *CatalogGraph {
	g := New()
	g.AddAll(facts...)
	return g
}

// Bind registers a namespace prefix.
func (g *CatalogGraph) Bind(prefix, namespace string) {
	g.prefixes[prefix] = namespace
}

// Prefixes returns a copy of the prefix table.
func (g *CatalogGraph) Prefixes() map[string]string {
	return maps.Clone(g.prefixes)
}

// Add inserts a fact. Adding a fact already present is a no-op; the return
// value reports whether the graph changed.
func (g *CatalogGraph) Add(f entities.Fact) bool {
	if _, ok := g.index[f]; ok {
		return false
	}
	g.index[f] = struct{}{}
	g.facts = append(g.facts, f)
	return true
}

// AddAll inserts every fact.
func (g *CatalogGraph) AddAll(facts ...entities.Fact) {
	for _, f := range facts {
		g.Add(f)
	}
}

// Has reports whether the exact fact is present.
func (g *CatalogGraph) Has(f entities.Fact) bool {
	_, ok := g.index[f]
	return ok
}

// Len returns the number of facts.
func (g *CatalogGraph) Len() int {
	return len(g.facts)
}

// Remove deletes every fact matching the pattern and returns how many were
// removed. Empty subject/relation and the zero object are wildcards.
func (g *CatalogGraph) Remove(subject string, relation entities.Relation, object entities.Term) int {
	if subject != AnySubject && relation != AnyRelation && !object.IsZero() {
		f := entities.NewFact(subject, relation, object)
		if !g.Has(f) {
			return 0
		}
	}

	kept := make([]entities.Fact, 0, len(g.facts))
	removed := 0
	for _, f := range g.facts {
		if matches(f, subject, relation, object) {
			delete(g.index, f)
			removed++
			continue
		}
		kept = append(kept, f)
	}
	if removed > 0 {
		g.facts = kept
	}
	return removed
}

// RemoveAll removes every fact matching any of the patterns.
func (g *CatalogGraph) RemoveAll(patterns ...Pattern) int {
	removed := 0
	for _, p := range patterns {
		removed += g.Remove(p.Subject, p.Relation, p.Object)
	}
	return removed
}

// Query returns the facts matching the pattern in insertion order.
// The sequence reads the graph when ranged over, so it can be restarted.
func (g *CatalogGraph) Query(subject string, relation entities.Relation, object entities.Term) iter.Seq[entities.Fact] {
	return func(yield func(entities.Fact) bool) {
		if subject != AnySubject && relation != AnyRelation && !object.IsZero() {
			f := entities.NewFact(subject, relation, object)
			if g.Has(f) {
				yield(f)
			}
			return
		}
		for _, f := range g.facts {
			if matches(f, subject, relation, object) && !yield(f) {
				return
			}
		}
	}
}

// Objects returns the objects of (subject, relation) in insertion order.
func (g *CatalogGraph) Objects(subject string, relation entities.Relation) []entities.Term {
	var out []entities.Term
	for f := range g.Query(subject, relation, AnyObject) {
		out = append(out, f.Object)
	}
	return out
}

// Object returns the first object of (subject, relation).
func (g *CatalogGraph) Object(subject string, relation entities.Relation) (entities.Term, bool) {
	for f := range g.Query(subject, relation, AnyObject) {
		return f.Object, true
	}
	return entities.Term{}, false
}

// Subjects returns the distinct subjects of facts with the given relation and
// object, in insertion order.
func (g *CatalogGraph) Subjects(relation entities.Relation, object entities.Term) []string {
	var out []string
	seen := make(map[string]struct{})
	for f := range g.Query(AnySubject, relation, object) {
		if _, ok := seen[f.Subject]; ok {
			continue
		}
		seen[f.Subject] = struct{}{}
		out = append(out, f.Subject)
	}
	return out
}

// Facts returns a copy of all facts in insertion order.
func (g *CatalogGraph) Facts() []entities.Fact {
	out := make([]entities.Fact, len(g.facts))
	copy(out, g.facts)
	return out
}

// Clone returns an independent copy of the graph.
func (g *CatalogGraph) Clone() *CatalogGraph {
	c := &CatalogGraph{
		prefixes: maps.Clone(g.prefixes),
		facts:    make([]entities.Fact, len(g.facts)),
		index:    maps.Clone(g.index),
	}
	copy(c.facts, g.facts)
	return c
}

// Merge returns the union of g and other. Neither operand is modified.
// Facts of g come first, followed by the facts only other holds.
func (g *CatalogGraph) Merge(other *CatalogGraph) *CatalogGraph {
	out := g.Clone()
	out.UnionInPlace(other)
	return out
}

// UnionInPlace adds every fact of other to g.
func (g *CatalogGraph) UnionInPlace(other *CatalogGraph) {
	if other == nil {
		return
	}
	for p, ns := range other.prefixes {
		if _, ok := g.prefixes[p]; !ok {
			g.prefixes[p] = ns
		}
	}
	g.AddAll(other.facts...)
}

// Equal reports whether both graphs hold the same fact set. Order and
// prefixes are ignored.
func (g *CatalogGraph) Equal(other *CatalogGraph) bool {
	if g.Len() != other.Len() {
		return false
	}
	for f := range g.index {
		if !other.Has(f) {
			return false
		}
	}
	return true
}

func matches(f entities.Fact, subject string, relation entities.Relation, object entities.Term) bool {
	if subject != AnySubject && f.Subject != subject {
		return false
	}
	if relation != AnyRelation && f.Relation != relation {
		return false
	}
	if !object.IsZero() && f.Object != object {
		return false
	}
	return true
}
