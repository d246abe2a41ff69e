// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
	"github.com/ersonp/datacatalog/internal/domain/ports"
)

// Entity is the registry entity produced by the mock Translator: one per
// subject, holding the subject's facts.
type Entity struct {
	ID    string
	Facts []entities.Fact
}

// EntityID returns the entity identifier.
func (e Entity) EntityID() string { return e.ID }

// Objects returns the objects of a relation in the entity.
func (e Entity) Objects(rel entities.Relation) []entities.Term {
	var out []entities.Term
	for _, f := range e.Facts {
		if f.Relation == rel {
			out = append(out, f.Object)
		}
	}
	return out
}

// Registry is an in-memory mock of ports.Registry. An entity is present once
// upserted and absent once deleted.
type Registry struct {
	mu sync.Mutex

	Entities map[string]ports.RegistryEntity

	// Presence, when set, overrides the answer of every Lookup.
	Presence  *ports.Presence
	LookupErr error
	UpsertErr error
	DeleteErr error

	// Call tracking
	Lookups []string
	Upserts [][]ports.RegistryEntity
	Deletes []string
}

// NewRegistry creates an empty mock registry.
func NewRegistry() *Registry {
	return &Registry{
		Entities: make(map[string]ports.RegistryEntity),
	}
}

// Lookup reports whether the entity was upserted and not deleted since.
func (m *Registry) Lookup(_ context.Context, entityID string) (ports.Presence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups = append(m.Lookups, entityID)
	if m.LookupErr != nil {
		return ports.PresenceUnknown, m.LookupErr
	}
	if m.Presence != nil {
		return *m.Presence, nil
	}
	if _, ok := m.Entities[entityID]; ok {
		return ports.PresenceFound, nil
	}
	return ports.PresenceAbsent, nil
}

// Upsert stores the batch.
func (m *Registry) Upsert(_ context.Context, batch []ports.RegistryEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserts = append(m.Upserts, batch)
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	for _, e := range batch {
		m.Entities[e.EntityID()] = e
	}
	return nil
}

// Delete removes the entity.
func (m *Registry) Delete(_ context.Context, entityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes = append(m.Deletes, entityID)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Entities, entityID)
	return nil
}

// Has reports whether the entity is stored.
func (m *Registry) Has(entityID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Entities[entityID]
	return ok
}

// LastUpsert returns the most recent upsert batch, or nil.
func (m *Registry) LastUpsert() []ports.RegistryEntity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Upserts) == 0 {
		return nil
	}
	return m.Upserts[len(m.Upserts)-1]
}

// TranslateCall records one Translate invocation.
type TranslateCall struct {
	Graph   *graph.CatalogGraph
	Replace []entities.Relation
}

// Translator is a mock implementation of ports.Translator. It groups facts by
// subject into Entity values.
type Translator struct {
	Err   error
	Calls []TranslateCall
}

// Translate groups the facts of g by subject.
func (m *Translator) Translate(g *graph.CatalogGraph, replace []entities.Relation) ([]ports.RegistryEntity, error) {
	m.Calls = append(m.Calls, TranslateCall{Graph: g.Clone(), Replace: replace})
	if m.Err != nil {
		return nil, m.Err
	}

	var out []ports.RegistryEntity
	index := make(map[string]int)
	for _, f := range g.Facts() {
		i, ok := index[f.Subject]
		if !ok {
			i = len(out)
			index[f.Subject] = i
			out = append(out, Entity{ID: f.Subject})
		}
		e := out[i].(Entity)
		e.Facts = append(e.Facts, f)
		out[i] = e
	}
	return out, nil
}
