package entities

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Identifiers composes the deterministic identifiers of one catalog
// deployment: organization -> domain -> entity type -> local id.
type Identifiers struct {
	OrganizationID string
	DomainID       string
}

// NewIdentifiers creates identifiers for the given organization and domain.
func NewIdentifiers(organizationID, domainID string) Identifiers {
	return Identifiers{
		OrganizationID: strings.TrimSpace(organizationID),
		DomainID:       strings.TrimSpace(domainID),
	}
}

// Organization returns the organization identifier, e.g. "urn:ACME".
func (ids Identifiers) Organization() string {
	return "urn:" + escape(ids.OrganizationID)
}

// Domain returns the domain identifier, e.g. "urn:ACME:Domain:default".
func (ids Identifiers) Domain() string {
	return ids.Organization() + ":Domain:" + escape(ids.DomainID)
}

// Catalog returns the identifier of the domain's data catalog.
func (ids Identifiers) Catalog() string {
	return ids.Domain() + ":DataCatalog"
}

// Glossary returns the identifier of the domain's business glossary.
func (ids Identifiers) Glossary() string {
	return ids.Domain() + ":BusinessGlossary"
}

// ContextBroker returns the identifier of the registry endpoint descriptor.
func (ids Identifiers) ContextBroker() string {
	return ids.Domain() + ":ContextBroker"
}

// DataProduct returns the identifier of a data product by its local id.
func (ids Identifiers) DataProduct(localID string) string {
	return ids.Domain() + ":DataProduct:" + escape(localID)
}

// Distribution returns the identifier of the distribution owned by the data
// product with the given local id.
func (ids Identifiers) Distribution(localID string) string {
	return ids.Domain() + ":Distribution:" + escape(localID)
}

// User returns the identifier of an owner. Owners given as absolute
// identifiers (anything with a scheme) are used as-is.
func (ids Identifiers) User(owner string) string {
	owner = strings.TrimSpace(owner)
	if isAbsolute(owner) {
		return owner
	}
	return ids.Organization() + ":User:" + escape(owner)
}

// DataProductLocalID recovers the local id from a data product identifier.
// The second return value is false if iri is not a data product of this domain.
func (ids Identifiers) DataProductLocalID(iri string) (string, bool) {
	prefix := ids.Domain() + ":DataProduct:"
	if !strings.HasPrefix(iri, prefix) {
		return "", false
	}
	localID, err := url.PathUnescape(strings.TrimPrefix(iri, prefix))
	if err != nil {
		return "", false
	}
	return localID, true
}

func escape(s string) string {
	return url.PathEscape(s)
}

// IsIRI reports whether s is an absolute IRI that can be written between
// angle brackets in N-Quads without escaping.
func IsIRI(s string) bool {
	return isAbsolute(s)
}

func isAbsolute(s string) bool {
	if strings.ContainsFunc(s, forbiddenInIRI) {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && (u.Opaque != "" || u.Host != "")
}

// hasScheme reports whether s starts with an RFC 3986 scheme followed by ':'.
func hasScheme(s string) bool {
	scheme, _, ok := strings.Cut(s, ":")
	if !ok || scheme == "" {
		return false
	}
	for i, r := range scheme {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && ('0' <= r && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// forbiddenInIRI matches the characters the N-Quads IRIREF production
// excludes.
func forbiddenInIRI(r rune) bool {
	if r <= 0x20 || r == utf8.RuneError {
		return true
	}
	return strings.ContainsRune("<>\"{}|^`\\", r)
}
