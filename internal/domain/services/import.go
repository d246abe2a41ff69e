package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/infrastructure/parsers"
)

// ImportOptions controls bulk registration behavior.
type ImportOptions struct {
	DryRun bool // Validate without registering
}

// ImportError represents an error for a single manifest entry.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	ID      string // Data product id, if present
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of a bulk registration.
type ImportResult struct {
	Registered []string // Identifiers of the registered data products
	Skipped    []string // Ids the registry already holds
	Errors     []ImportError
}

// ImportService registers data products from a manifest, one registration
// at a time through the Reconciler.
type ImportService struct {
	reconciler *Reconciler
}

// NewImportService creates a new import service.
func NewImportService(reconciler *Reconciler) *ImportService {
	return &ImportService{
		reconciler: reconciler,
	}
}

// Import validates all entries, then registers the valid ones in manifest
// order. Invalid entries and ids already in the registry do not stop the
// import; an unavailable registry or store does, and the partial result is
// returned with the error.
func (s *ImportService) Import(ctx context.Context, raws []parsers.RawRegistration, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	valid, validationErrors := validateRegistrations(raws)
	result.Errors = validationErrors

	if opts.DryRun || len(valid) == 0 {
		return result, nil
	}

	for i := range valid {
		raw := &valid[i]
		iri, err := s.reconciler.Register(ctx, &raw.Registration)
		switch {
		case err == nil:
			result.Registered = append(result.Registered, iri)
		case errors.Is(err, entities.ErrAlreadyExists):
			result.Skipped = append(result.Skipped, raw.ID)
		case errors.Is(err, entities.ErrInvalidRequest):
			result.Errors = append(result.Errors, ImportError{Line: raw.LineNum, ID: raw.ID, Message: err.Error()})
		default:
			return result, fmt.Errorf("registering %s: %w", raw.ID, err)
		}
	}

	return result, nil
}

// validateRegistrations returns the valid entries and an error per invalid
// one. A repeated id is an error on every occurrence after the first.
func validateRegistrations(raws []parsers.RawRegistration) ([]parsers.RawRegistration, []ImportError) {
	valid := make([]parsers.RawRegistration, 0, len(raws))
	var errs []ImportError
	seen := make(map[string]int, len(raws))

	for i := range raws {
		raw := raws[i]
		if raw.LineNum == 0 {
			raw.LineNum = i + 1
		}

		if err := raw.Validate(); err != nil {
			errs = append(errs, ImportError{Line: raw.LineNum, ID: raw.ID, Message: err.Error()})
			continue
		}

		id := strings.TrimSpace(raw.ID)
		if first, ok := seen[id]; ok {
			errs = append(errs, ImportError{
				Line:    raw.LineNum,
				ID:      id,
				Message: fmt.Sprintf("duplicate id %q (first on line %d)", id, first),
			})
			continue
		}
		seen[id] = raw.LineNum

		valid = append(valid, raw)
	}

	return valid, errs
}
