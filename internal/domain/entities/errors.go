package entities

import "errors"

// Error kinds surfaced by catalog operations. Adapters wrap their failures
// with the matching kind so callers can use errors.Is.
var (
	// ErrAlreadyExists is returned when registering an id the registry reports present.
	ErrAlreadyExists = errors.New("data product already exists")
	// ErrNotFound is returned when deleting or reading an id that is absent.
	ErrNotFound = errors.New("data product not found")
	// ErrRegistryUnavailable wraps transport failures talking to the registry.
	ErrRegistryUnavailable = errors.New("registry unavailable")
	// ErrPersistenceUnavailable wraps failures loading or saving the snapshot.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrInvalidRequest is returned for malformed registration requests.
	ErrInvalidRequest = errors.New("invalid request")
)
