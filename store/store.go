// Package store persists discovered manifests. The discovery engine only
// constructs Package values; this store is where the plugin-management
// layer keeps them between runs, either on local disk or in a shared etcd
// cluster.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no manifest is stored for a package.
var ErrNotFound = errors.New("manifest not found")

// Store persists serialized manifests keyed by package name.
type Store interface {
	// Put stores the manifest for a package, replacing any previous one.
	Put(ctx context.Context, pkg string, manifest []byte) error

	// Get returns the stored manifest, or ErrNotFound.
	Get(ctx context.Context, pkg string) ([]byte, error)

	// Delete removes the manifest for a package. Deleting an absent
	// manifest is not an error.
	Delete(ctx context.Context, pkg string) error

	// List returns the package names with a stored manifest.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
