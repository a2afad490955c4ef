package pysrc

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestDependencies(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "acme-1.0.dist-info", "METADATA"),
		`Metadata-Version: 2.1
Name: acme
Version: 1.0
Requires-Dist: pandas (>=1.5)
Requires-Dist: pyyaml
Requires-Dist: lxml[html]; extra == "xml"
Requires-Dist: pandas
`)

	got := Dependencies(root)
	want := []string{"pandas", "pyyaml", "lxml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies = %v, want %v", got, want)
	}
}

func TestDependenciesMissingMetadata(t *testing.T) {
	if got := Dependencies(t.TempDir()); got != nil {
		t.Errorf("Dependencies = %v, want nil", got)
	}
}
