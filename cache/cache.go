// Package cache stores discovery results keyed on package identity and
// validated by a fingerprint of the registration file content. The engine
// itself never caches; the plugin-management layer owns this store and
// invalidates entries whenever the fingerprint changes.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Fingerprint returns the content fingerprint used as the cache validity
// key: the hex-encoded SHA-256 of the registration file bytes.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Cache is the manifest cache the manager consults before running
// discovery. A Get with a different fingerprint than the stored one is a
// miss: stale manifests are never served.
type Cache interface {
	// Get returns the cached manifest for a package if the fingerprint
	// still matches. The second return value reports a hit.
	Get(ctx context.Context, pkg, fingerprint string) ([]byte, bool, error)

	// Put stores a manifest with the fingerprint it was derived from,
	// replacing any previous entry for the package.
	Put(ctx context.Context, pkg, fingerprint string, manifest []byte) error

	// Invalidate drops the entry for a package, if any.
	Invalidate(ctx context.Context, pkg string) error

	// Close releases any resources held by the cache.
	Close() error
}

type entry struct {
	fingerprint string
	manifest    []byte
}

// Memory is an in-process Cache for single-node deployments and tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, pkg, fingerprint string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[pkg]
	if !ok || e.fingerprint != fingerprint {
		return nil, false, nil
	}
	manifest := make([]byte, len(e.manifest))
	copy(manifest, e.manifest)
	return manifest, true, nil
}

// Put implements Cache.
func (m *Memory) Put(_ context.Context, pkg, fingerprint string, manifest []byte) error {
	stored := make([]byte, len(manifest))
	copy(stored, manifest)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[pkg] = entry{fingerprint: fingerprint, manifest: stored}
	return nil
}

// Invalidate implements Cache.
func (m *Memory) Invalidate(_ context.Context, pkg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, pkg)
	return nil
}

// Close implements Cache.
func (m *Memory) Close() error {
	return nil
}
