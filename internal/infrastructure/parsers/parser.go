// Package parsers reads bulk registration manifests in JSON, CSV and YAML.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/datacatalog/internal/domain/entities"
)

// RawRegistration is a registration read from a manifest, before validation.
type RawRegistration struct {
	entities.Registration `yaml:",inline"`

	LineNum int `json:"-" yaml:"-"` // Line or record number in the source (set by parser)
}

// Parser defines the interface for parsing registration manifests.
type Parser interface {
	Parse(r io.Reader) ([]RawRegistration, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv", "yaml".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	case "yaml", "yml":
		return &YAMLParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ForFormat(ext)
}
