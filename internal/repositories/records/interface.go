// Package records persists string-keyed mappings of records, one namespace per
// (client id, record kind). The whole mapping is read at the start of an
// operation and written back wholesale; there is no locking, so two processes
// writing the same namespace race and the last writer wins.
package records

import "context"

// Repository loads and saves one namespace.
type Repository[T any] interface {
	// Load returns the stored mapping. A namespace that does not exist yet
	// yields an empty, non-nil map.
	Load(ctx context.Context) (map[string]T, error)
	// Save replaces the full contents of the namespace.
	Save(ctx context.Context, data map[string]T) error
}
