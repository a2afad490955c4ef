// Package pysrc locates the registration source file of an installed
// plugin package. Lookup prefers the package's own entry-point declaration
// in its distribution metadata and falls back to probing the conventional
// file names inside the package directory.
package pysrc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trellis-data/pluginkit/discerr"
)

// registrationFiles are the conventional names probed when a package
// carries no entry-point metadata. Exactly one must exist; two candidates
// with no disambiguation rule is an ambiguity, not a silent pick.
var registrationFiles = []string{"plugins.py", "plugin.py"}

// Locate returns the path of the registration file for the package
// installed under root. name is the package's declared full name; dashes
// map to underscores for the on-disk module directory, per distribution
// naming convention. Fails with SOURCE_NOT_FOUND when no candidate exists
// or the candidates are ambiguous.
func Locate(root, name string) (string, error) {
	if ep, ok := findEntryPoint(root); ok {
		return locateFromEntryPoint(root, name, ep)
	}

	module := strings.ReplaceAll(name, "-", "_")
	for _, dir := range []string{
		filepath.Join(root, module),
		// src layout used by editable installs
		filepath.Join(root, "src", module),
	} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		return probeDir(dir, name)
	}

	return "", discerr.New(name, "locate", discerr.CodeSourceNotFound,
		fmt.Sprintf("no %s directory under %s", module, root))
}

// locateFromEntryPoint maps a dotted module path from the entry-point
// declaration to its source file: MODULE.py first, then MODULE/__init__.py.
func locateFromEntryPoint(root, name string, ep EntryPoint) (string, error) {
	base := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(ep.Module, ".", "/")))

	if path := base + ".py"; fileExists(path) {
		return path, nil
	}
	if path := filepath.Join(base, "__init__.py"); fileExists(path) {
		return path, nil
	}
	return "", discerr.New(name, "locate", discerr.CodeSourceNotFound,
		fmt.Sprintf("entry point declares module %s but no source file exists", ep.Module)).
		WithDetails(map[string]any{"module": ep.Module, "attr": ep.Attr})
}

func probeDir(dir, name string) (string, error) {
	var found []string
	for _, file := range registrationFiles {
		if path := filepath.Join(dir, file); fileExists(path) {
			found = append(found, path)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", discerr.New(name, "locate", discerr.CodeSourceNotFound,
			fmt.Sprintf("no registration file in %s", dir))
	default:
		return "", discerr.New(name, "locate", discerr.CodeSourceNotFound,
			"ambiguous registration file").
			WithDetails(map[string]any{"candidates": found})
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
