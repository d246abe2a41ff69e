package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/ports"
)

// DefaultAuditLimit is the number of entries returned when no limit is given.
const DefaultAuditLimit = 50

// AuditHandler reads the catalog audit log.
type AuditHandler struct {
	log ports.AuditLog
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(log ports.AuditLog) *AuditHandler {
	return &AuditHandler{log: log}
}

// AuditQuery selects audit entries. DataProductID takes precedence over
// Action.
type AuditQuery struct {
	DataProductID string
	Action        string
	Limit         int
}

// Handle returns matching entries, newest first.
func (h *AuditHandler) Handle(ctx context.Context, q AuditQuery) ([]entities.AuditEntry, error) {
	if q.DataProductID != "" {
		entries, err := h.log.FindAuditLog(ctx, q.DataProductID)
		if err != nil {
			return nil, fmt.Errorf("reading audit log for %s: %w", q.DataProductID, err)
		}
		return entries, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	entries, err := h.log.RecentAuditLog(ctx, q.Action, limit)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}
