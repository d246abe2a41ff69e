package parsers

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLParser parses a YAML sequence of registrations.
type YAMLParser struct{}

// Parse reads YAML from the reader and returns parsed registrations.
func (p *YAMLParser) Parse(r io.Reader) ([]RawRegistration, error) {
	var nodes []yaml.Node

	if err := yaml.NewDecoder(r).Decode(&nodes); err != nil {
		if errors.Is(err, io.EOF) {
			return []RawRegistration{}, nil
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	regs := make([]RawRegistration, 0, len(nodes))
	for i := range nodes {
		var reg RawRegistration
		if err := nodes[i].Decode(&reg); err != nil {
			return nil, fmt.Errorf("line %d: %w", nodes[i].Line, err)
		}
		reg.LineNum = nodes[i].Line
		regs = append(regs, reg)
	}

	return regs, nil
}
