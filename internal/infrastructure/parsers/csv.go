package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/datacatalog/internal/domain/entities"
)

// ListSeparator separates values inside list columns.
const ListSeparator = ";"

// CSVParser parses registrations from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed registrations.
// Expected columns: id, name, description, owner, keywords, glossary_terms,
// mappings. List columns hold values separated by ListSeparator.
func (p *CSVParser) Parse(r io.Reader) ([]RawRegistration, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	requiredCols := []string{"id", "name", "description", "owner"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawRegistrations.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawRegistration, error) {
	var regs []RawRegistration
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		regs = append(regs, RawRegistration{
			Registration: entities.Registration{
				ID:            getColumn(record, colIndex, "id"),
				Name:          getColumn(record, colIndex, "name"),
				Description:   getColumn(record, colIndex, "description"),
				Owner:         getColumn(record, colIndex, "owner"),
				Keywords:      splitList(getColumn(record, colIndex, "keywords")),
				GlossaryTerms: splitList(getColumn(record, colIndex, "glossary_terms")),
				Mappings:      splitList(getColumn(record, colIndex, "mappings")),
			},
			LineNum: lineNum,
		})
	}

	return regs, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, ListSeparator) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
