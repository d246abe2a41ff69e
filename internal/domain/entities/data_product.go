package entities

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Registration is a request to add a data product to the catalog.
type Registration struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	Owner         string   `json:"owner" yaml:"owner"`
	Keywords      []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	GlossaryTerms []string `json:"glossary_terms" yaml:"glossary_terms"`
	Mappings      []string `json:"mappings,omitempty" yaml:"mappings,omitempty"`
}

// Validate checks the required fields of the request.
func (r *Registration) Validate() error {
	var missing []string
	if strings.TrimSpace(r.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(r.Owner) == "" {
		missing = append(missing, "owner")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if r.ID != strings.TrimSpace(r.ID) {
		return fmt.Errorf("%w: id %q has surrounding whitespace", ErrInvalidRequest, r.ID)
	}
	if field, ok := r.invalidUTF8(); ok {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidRequest, field)
	}
	if owner := strings.TrimSpace(r.Owner); hasScheme(owner) && !isAbsolute(owner) {
		return fmt.Errorf("%w: owner %q is not a valid absolute URI", ErrInvalidRequest, r.Owner)
	}
	for _, term := range r.GlossaryTerms {
		if !isAbsolute(term) {
			return fmt.Errorf("%w: glossary term %q is not an absolute URI", ErrInvalidRequest, term)
		}
	}
	for _, m := range r.Mappings {
		if !isAbsolute(m) {
			return fmt.Errorf("%w: mapping %q is not an absolute URI", ErrInvalidRequest, m)
		}
	}
	return nil
}

// invalidUTF8 returns the name of the first field holding invalid UTF-8.
func (r *Registration) invalidUTF8() (string, bool) {
	fields := []struct {
		name   string
		values []string
	}{
		{"id", []string{r.ID}},
		{"name", []string{r.Name}},
		{"description", []string{r.Description}},
		{"owner", []string{r.Owner}},
		{"keywords", r.Keywords},
		{"glossary_terms", r.GlossaryTerms},
		{"mappings", r.Mappings},
	}
	for _, f := range fields {
		for _, v := range f.values {
			if !utf8.ValidString(v) {
				return f.name, true
			}
		}
	}
	return "", false
}

// DataProduct is a read view of a data product reconstructed from the graph.
type DataProduct struct {
	ID            string   `json:"id"`
	IRI           string   `json:"iri"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Publishers    []string `json:"publishers"`
	Keywords      []string `json:"keywords,omitempty"`
	GlossaryTerms []string `json:"glossary_terms,omitempty"`
	Mappings      []string `json:"mappings,omitempty"`
	Distribution  string   `json:"distribution"`
	AccessURL     string   `json:"access_url,omitempty"`
	MediaType     string   `json:"media_type,omitempty"`
}

// SearchText returns the text indexed for discovery.
func (p *DataProduct) SearchText() string {
	parts := []string{p.Title, p.Description}
	if len(p.Keywords) > 0 {
		parts = append(parts, "Keywords: "+strings.Join(p.Keywords, ", "))
	}
	return strings.Join(parts, "\n")
}
