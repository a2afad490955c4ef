package pysrc

import (
	"os"
	"path/filepath"
	"strings"
)

// EntryPointSection is the distribution-metadata section a plugin package
// uses to declare its registration entry point.
const EntryPointSection = "trellis_plugin"

// EntryPoint is one parsed entry-point declaration: the declaration name,
// the dotted module path, and the attribute inside that module.
type EntryPoint struct {
	Name   string
	Module string
	Attr   string
}

// ParseEntryPoints parses INI-style entry_points.txt content and returns
// the declarations under the given section, in file order. Lines that do
// not look like "name = module:attr" are skipped.
func ParseEntryPoints(content, section string) []EntryPoint {
	var points []EntryPoint
	inSection := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inSection = strings.TrimSpace(line[1:len(line)-1]) == section
			continue
		}
		if !inSection {
			continue
		}
		name, target, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		module, attr, ok := strings.Cut(strings.TrimSpace(target), ":")
		if !ok {
			continue
		}
		points = append(points, EntryPoint{
			Name:   strings.TrimSpace(name),
			Module: strings.TrimSpace(module),
			Attr:   strings.TrimSpace(attr),
		})
	}
	return points
}

// findEntryPoint scans the dist-info directories under root for an
// entry-point declaration in the plugin section. The first declaration
// found wins; a missing or unreadable entry_points.txt is not an error,
// the locator just falls back to path probing.
func findEntryPoint(root string) (EntryPoint, bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return EntryPoint{}, false
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dist-info") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, entry.Name(), "entry_points.txt"))
		if err != nil {
			continue
		}
		if points := ParseEntryPoints(string(data), EntryPointSection); len(points) > 0 {
			return points[0], true
		}
	}
	return EntryPoint{}, false
}
