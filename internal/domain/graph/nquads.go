package graph

import (
	"errors"
	"fmt"
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"

	"github.com/ersonp/datacatalog/internal/domain/entities"
)

// WriteNQuads serializes the graph as N-Quads in insertion order.
// The prefix table is not part of the output.
func (g *CatalogGraph) WriteNQuads(w io.Writer) error {
	qw := nquads.NewWriter(w)
	for _, f := range g.facts {
		if err := qw.WriteQuad(toQuad(f)); err != nil {
			return fmt.Errorf("writing quad %s: %w", f, err)
		}
	}
	return qw.Close()
}

// ReadNQuads parses an N-Quads document into a new graph. Graph labels are
// ignored.
func ReadNQuads(r io.Reader) (*CatalogGraph, error) {
	qr := nquads.NewReader(r, false)
	defer qr.Close()

	g := New()
	for line := 1; ; line++ {
		q, err := qr.ReadQuad()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading quad %d: %w", line, err)
		}
		f, err := fromQuad(q)
		if err != nil {
			return nil, fmt.Errorf("converting quad %d: %w", line, err)
		}
		g.Add(f)
	}
	return g, nil
}

func toQuad(f entities.Fact) quad.Quad {
	var object quad.Value
	if f.Object.IsIRI() {
		object = quad.IRI(f.Object.Value)
	} else {
		object = quad.String(f.Object.Value)
	}
	return quad.Quad{
		Subject:   quad.IRI(f.Subject),
		Predicate: quad.IRI(string(f.Relation)),
		Object:    object,
	}
}

func fromQuad(q quad.Quad) (entities.Fact, error) {
	subject, ok := q.Subject.(quad.IRI)
	if !ok {
		return entities.Fact{}, fmt.Errorf("subject %v is not an IRI", q.Subject)
	}
	predicate, ok := q.Predicate.(quad.IRI)
	if !ok {
		return entities.Fact{}, fmt.Errorf("predicate %v is not an IRI", q.Predicate)
	}

	var object entities.Term
	switch v := q.Object.(type) {
	case quad.IRI:
		object = entities.IRI(string(v))
	case quad.String:
		object = entities.Literal(string(v))
	case quad.TypedString:
		object = entities.Literal(string(v.Value))
	case quad.LangString:
		object = entities.Literal(string(v.Value))
	default:
		return entities.Fact{}, fmt.Errorf("unsupported object %v", q.Object)
	}

	return entities.NewFact(string(subject), entities.Relation(predicate), object), nil
}
