package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/datacatalog/internal/domain/services"
	"github.com/ersonp/datacatalog/internal/infrastructure/parsers"
)

// ImportHandler handles bulk registration from manifest files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format string // "json", "csv", "yaml", or "auto"
	DryRun bool   // Validate without registering
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Total      int
	Registered []string
	Skipped    []string
	Errors     []services.ImportError
}

// Handle registers the data products listed in a manifest file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	raws, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	if len(raws) == 0 {
		return &ImportResult{}, nil
	}

	serviceResult, err := h.service.Import(ctx, raws, services.ImportOptions{DryRun: opts.DryRun})
	result := &ImportResult{Total: len(raws)}
	if serviceResult != nil {
		result.Registered = serviceResult.Registered
		result.Skipped = serviceResult.Skipped
		result.Errors = serviceResult.Errors
	}
	if err != nil {
		return result, err
	}
	return result, nil
}
