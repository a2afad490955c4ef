package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is a Store writing one JSON file per package under a directory.
// Writes go through a temporary file and rename, so a crash mid-write
// never leaves a truncated manifest behind.
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns a file-backed store.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(pkg string) string {
	return filepath.Join(f.dir, pkg+".json")
}

// Put implements Store.
func (f *File) Put(_ context.Context, pkg string, manifest []byte) error {
	tmp, err := os.CreateTemp(f.dir, "."+pkg+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary manifest: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(manifest); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary manifest: %w", err)
	}
	if err := os.Rename(tmpName, f.path(pkg)); err != nil {
		return fmt.Errorf("failed to commit manifest: %w", err)
	}
	return nil
}

// Get implements Store.
func (f *File) Get(_ context.Context, pkg string) ([]byte, error) {
	data, err := os.ReadFile(f.path(pkg))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return data, nil
}

// Delete implements Store.
func (f *File) Delete(_ context.Context, pkg string) error {
	err := os.Remove(f.path(pkg))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete manifest: %w", err)
	}
	return nil
}

// List implements Store.
func (f *File) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}
	var pkgs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		pkgs = append(pkgs, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(pkgs)
	return pkgs, nil
}

// Close implements Store.
func (f *File) Close() error {
	return nil
}
