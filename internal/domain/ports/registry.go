// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
)

// Presence is the registry's answer to an existence lookup.
type Presence int

const (
	// PresenceUnknown means the registry answered with neither success nor
	// not-found (e.g. 401, 500).
	PresenceUnknown Presence = iota
	// PresenceFound means the registry answered with a success status.
	PresenceFound
	// PresenceAbsent means the registry answered not-found.
	PresenceAbsent
)

func (p Presence) String() string {
	switch p {
	case PresenceFound:
		return "found"
	case PresenceAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// RegistryEntity is a translated entity ready to be pushed to the registry.
// Its wire shape belongs to the translator that produced it.
type RegistryEntity interface {
	EntityID() string
}

// Registry is the remote registry holding the authoritative copy of catalog
// entities. Transport failures are reported wrapping
// entities.ErrRegistryUnavailable.
type Registry interface {
	// Lookup asks the registry whether an entity exists.
	Lookup(ctx context.Context, entityID string) (Presence, error)

	// Upsert creates or updates the given entities in one batch.
	Upsert(ctx context.Context, batch []RegistryEntity) error

	// Delete removes an entity by identifier.
	Delete(ctx context.Context, entityID string) error
}

// Translator maps a graph (or subgraph) to registry entities. Relations in
// replace are sent with their full membership; all others are sent as
// single-valued attributes.
type Translator interface {
	Translate(g *graph.CatalogGraph, replace []entities.Relation) ([]RegistryEntity, error)
}
