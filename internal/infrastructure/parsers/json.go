package parsers

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONParser parses a JSON array of registrations.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed registrations.
func (p *JSONParser) Parse(r io.Reader) ([]RawRegistration, error) {
	var regs []RawRegistration

	if err := json.NewDecoder(r).Decode(&regs); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Array index + 1
	for i := range regs {
		regs[i].LineNum = i + 1
	}

	return regs, nil
}
