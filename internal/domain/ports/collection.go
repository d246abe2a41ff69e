package ports

import "context"

// CollectionManager handles the lifecycle of the discovery index collection.
// It is separate from ProductIndex so read/write code does not depend on
// collection administration.
type CollectionManager interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection removes the collection and all its documents.
	DeleteCollection(ctx context.Context) error
}
