package entities

// Fixed values attached to base entities and distributions.
const (
	// MediaTypeJSONLD is the media type of every distribution served by the
	// context broker.
	MediaTypeJSONLD = "http://www.iana.org/assignments/media-types/application/ld+json"

	// BrokerConformance identifies the NGSI-LD API specification the context
	// broker conforms to.
	BrokerConformance = "https://www.etsi.org/deliver/etsi_gs/CIM/001_099/009/01.08.01_60/gs_CIM009v010801p.pdf"
)

// BaseEntity describes one of the entities created at first startup.
type BaseEntity struct {
	Name  string
	Class string
	ID    func(Identifiers) string
}

// BaseEntities are created once, at first startup, and never destroyed.
var BaseEntities = []BaseEntity{
	{Name: "catalog", Class: ClassCatalog, ID: Identifiers.Catalog},
	{Name: "glossary", Class: ClassConceptScheme, ID: Identifiers.Glossary},
	{Name: "context-broker", Class: ClassContextBroker, ID: Identifiers.ContextBroker},
}

// BaseEntityNames returns the names of the base entities.
func BaseEntityNames() []string {
	names := make([]string, len(BaseEntities))
	for i, e := range BaseEntities {
		names[i] = e.Name
	}
	return names
}
