package ports

import (
	"context"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
)

// SnapshotStore persists whole catalog graphs keyed by catalog identifier.
// Failures are reported wrapping entities.ErrPersistenceUnavailable.
type SnapshotStore interface {
	// Load returns the stored graph, or nil if no snapshot exists.
	Load(ctx context.Context, catalogID string) (*graph.CatalogGraph, error)

	// Save replaces the stored snapshot with g.
	Save(ctx context.Context, catalogID string, g *graph.CatalogGraph) (*entities.SnapshotInfo, error)

	// Info returns metadata of the stored snapshot, or nil if none exists.
	Info(ctx context.Context, catalogID string) (*entities.SnapshotInfo, error)
}

// AuditLog records completed catalog mutations.
type AuditLog interface {
	// LogAction appends an entry to the audit log.
	LogAction(ctx context.Context, action string, dataProductID string, details map[string]any) error

	// FindAuditLog finds entries for one data product, newest first.
	FindAuditLog(ctx context.Context, dataProductID string) ([]entities.AuditEntry, error)

	// RecentAuditLog returns the newest entries, optionally filtered by action.
	RecentAuditLog(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
