// Package storage provides the pluggable object store the project
// archive (push/pull) syncs against: a small Put/Get/List contract with
// local-filesystem and S3 implementations selected by configuration.
// The render cache never goes through this layer; its atomic-rename
// semantics require direct filesystem access.
package storage

import (
	"context"
	"io"
)

// Adapter is the object-store contract archive push/pull operates over.
// Paths are forward-slash keys relative to the adapter's root.
type Adapter interface {
	Put(ctx context.Context, path string, data io.Reader) error

	Get(ctx context.Context, path string) (io.ReadCloser, error)

	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)

	// List returns the keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	Close() error
}
