package pysrc

import (
	"os"
	"path/filepath"
	"strings"
)

// Dependencies returns the dependency names a package declares in its
// dist-info METADATA, in declaration order without duplicates. Best
// effort: a package without readable metadata yields nil, since
// dependency names are manifest metadata, not discovery input.
func Dependencies(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dist-info") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, entry.Name(), "METADATA"))
		if err != nil {
			continue
		}
		return parseRequires(string(data))
	}
	return nil
}

// parseRequires extracts distribution names from Requires-Dist headers,
// dropping version constraints, extras, and environment markers.
func parseRequires(metadata string) []string {
	var deps []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(metadata, "\n") {
		rest, ok := strings.CutPrefix(line, "Requires-Dist:")
		if !ok {
			continue
		}
		name := strings.TrimSpace(rest)
		if cut := strings.IndexAny(name, " ([<>=!~;"); cut >= 0 {
			name = name[:cut]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		deps = append(deps, name)
	}
	return deps
}
