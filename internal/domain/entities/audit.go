package entities

import "time"

// Audit actions.
const (
	ActionRegister  = "register"
	ActionDelete    = "delete"
	ActionBootstrap = "bootstrap"
)

// AuditEntry represents a logged catalog mutation.
type AuditEntry struct {
	ID            int64          `json:"id"`
	Action        string         `json:"action"`
	DataProductID string         `json:"data_product_id,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// SnapshotInfo describes the persisted snapshot of a catalog graph.
type SnapshotInfo struct {
	CatalogID string    `json:"catalog_id"`
	Version   int       `json:"version"`
	FactCount int       `json:"fact_count"`
	SavedAt   time.Time `json:"saved_at"`
}
