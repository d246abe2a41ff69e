package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
)

// SnapshotStore is an in-memory mock of ports.SnapshotStore.
type SnapshotStore struct {
	mu sync.Mutex

	Graphs   map[string]*graph.CatalogGraph
	Versions map[string]int

	LoadErr error
	SaveErr error

	// Call tracking
	SaveCallCount int
}

// NewSnapshotStore creates an empty mock store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		Graphs:   make(map[string]*graph.CatalogGraph),
		Versions: make(map[string]int),
	}
}

// Load returns a copy of the stored graph, or nil.
func (m *SnapshotStore) Load(_ context.Context, catalogID string) (*graph.CatalogGraph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	g, ok := m.Graphs[catalogID]
	if !ok {
		return nil, nil
	}
	return g.Clone(), nil
}

// Save stores a copy of g.
func (m *SnapshotStore) Save(_ context.Context, catalogID string, g *graph.CatalogGraph) (*entities.SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCallCount++
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	m.Graphs[catalogID] = g.Clone()
	m.Versions[catalogID]++
	return m.info(catalogID), nil
}

// Info returns metadata of the stored graph, or nil.
func (m *SnapshotStore) Info(_ context.Context, catalogID string) (*entities.SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if _, ok := m.Graphs[catalogID]; !ok {
		return nil, nil
	}
	return m.info(catalogID), nil
}

// Stored returns the stored graph without copying, or nil.
func (m *SnapshotStore) Stored(catalogID string) *graph.CatalogGraph {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Graphs[catalogID]
}

func (m *SnapshotStore) info(catalogID string) *entities.SnapshotInfo {
	return &entities.SnapshotInfo{
		CatalogID: catalogID,
		Version:   m.Versions[catalogID],
		FactCount: m.Graphs[catalogID].Len(),
		SavedAt:   time.Now().UTC(),
	}
}

// AuditLog is an in-memory mock of ports.AuditLog.
type AuditLog struct {
	mu      sync.Mutex
	Entries []entities.AuditEntry
	Err     error
}

// LogAction appends an entry.
func (m *AuditLog) LogAction(_ context.Context, action string, dataProductID string, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, entities.AuditEntry{
		ID:            int64(len(m.Entries) + 1),
		Action:        action,
		DataProductID: dataProductID,
		Details:       details,
		CreatedAt:     time.Now().UTC(),
	})
	return nil
}

// FindAuditLog returns entries for one data product, newest first.
func (m *AuditLog) FindAuditLog(_ context.Context, dataProductID string) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.AuditEntry
	for _, e := range m.Entries {
		if e.DataProductID == dataProductID {
			out = append(out, e)
		}
	}
	newestFirst(out)
	return out, nil
}

// RecentAuditLog returns the newest entries, optionally filtered by action.
func (m *AuditLog) RecentAuditLog(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.AuditEntry
	for _, e := range m.Entries {
		if action == "" || e.Action == action {
			out = append(out, e)
		}
	}
	newestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Actions returns the logged actions in order.
func (m *AuditLog) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Action
	}
	return out
}

func newestFirst(entries []entities.AuditEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID > entries[j].ID
	})
}
