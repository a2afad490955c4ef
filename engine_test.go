package pluginkit

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-data/pluginkit/astgrep"
	"github.com/trellis-data/pluginkit/manifest"
)

// writePlugin lays out an installed package with the given registration
// file content and returns the install root.
func writePlugin(t *testing.T, src string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "acme_reeds")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugins.py"), []byte(src), 0o644))
	return root
}

func TestDiscoverParserPlugin(t *testing.T) {
	root := writePlugin(t, `from pkg.parser import Foo

def register_plugin():
    return [
        ParserPlugin(name="x", obj=Foo),
    ]
`)

	pkg, err := NewEngine().Discover(context.Background(), root, "acme-reeds")
	require.NoError(t, err)
	require.Len(t, pkg.Plugins, 1)

	p := pkg.Plugins[0]
	assert.Equal(t, "x", p.Name)
	assert.Equal(t, manifest.KindParser, p.Kind)
	require.NotNil(t, p.Obj)
	assert.Equal(t, "pkg.parser", p.Obj.Module)
	assert.Equal(t, "Foo", p.Obj.Name)
	assert.Equal(t, manifest.ObjectClass, p.Obj.Kind)
}

func TestDiscoverTwoKindsPreserveOrder(t *testing.T) {
	root := writePlugin(t, `from acme.parser import CsvParser
from acme.export import run_export

def register_plugin():
    return [
        ParserPlugin(name="csv", obj=CsvParser),
        ExporterPlugin(name="out", obj=run_export),
    ]
`)

	pkg, err := NewEngine().Discover(context.Background(), root, "acme-reeds")
	require.NoError(t, err)
	require.Len(t, pkg.Plugins, 2)
	assert.Equal(t, manifest.KindParser, pkg.Plugins[0].Kind)
	assert.Equal(t, manifest.KindExporter, pkg.Plugins[1].Kind)
	assert.Equal(t, manifest.ObjectFunction, pkg.Plugins[1].Obj.Kind)
}

func TestDiscoverEnumMemberSerializesAsLiteral(t *testing.T) {
	root := writePlugin(t, `from trellis.plugins import IOType
from acme.parser import CsvParser

def register_plugin():
    return [
        ParserPlugin(name="csv", obj=CsvParser, io_type=IOType.STDOUT),
    ]
`)

	pkg, err := NewEngine().Discover(context.Background(), root, "acme-reeds")
	require.NoError(t, err)
	require.NotNil(t, pkg.Plugins[0].IOType)
	assert.Equal(t, "stdout", *pkg.Plugins[0].IOType)
}

func TestDiscoverUnresolvedSymbolIsAllOrNothing(t *testing.T) {
	root := writePlugin(t, `from acme.parser import CsvParser

def register_plugin():
    return [
        ParserPlugin(name="good", obj=CsvParser),
        ParserPlugin(name="bad", obj=LocalThing),
    ]
`)

	pkg, err := NewEngine().Discover(context.Background(), root, "acme-reeds")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedSymbol), "got %v", err)
	assert.Nil(t, pkg, "no partial manifest on failure")
	assert.True(t, TriggersFallback(err))
}

func TestDiscoverComputedValueNeedsRuntime(t *testing.T) {
	root := writePlugin(t, `from acme.parser import CsvParser

def register_plugin():
    return [
        ParserPlugin(name="csv", obj=CsvParser, config=make_config()),
    ]
`)

	_, err := NewEngine().Discover(context.Background(), root, "acme-reeds")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequiresRuntimeInspection), "got %v", err)
}

func TestDiscoverIdempotent(t *testing.T) {
	root := writePlugin(t, `from acme.parser import CsvParser
from trellis.plugins import IOType

def register_plugin():
    return [
        ParserPlugin(name="csv", obj=CsvParser, io_type=IOType.BOTH, requires_store=True),
    ]
`)

	engine := NewEngine()
	first, err := engine.Discover(context.Background(), root, "acme-reeds")
	require.NoError(t, err)
	second, err := engine.Discover(context.Background(), root, "acme-reeds")
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "unchanged content must produce byte-identical output")
}

func TestDiscoverImportOrderIrrelevant(t *testing.T) {
	body := `
def register_plugin():
    return [
        ParserPlugin(name="csv", obj=CsvParser, io_type=IOType.STDIN),
    ]
`
	rootA := writePlugin(t, "from acme.parser import CsvParser\nfrom trellis.plugins import IOType\n"+body)
	rootB := writePlugin(t, "from trellis.plugins import IOType\nfrom acme.parser import CsvParser\n"+body)

	engine := NewEngine()
	pkgA, err := engine.Discover(context.Background(), rootA, "acme-reeds")
	require.NoError(t, err)
	pkgB, err := engine.Discover(context.Background(), rootB, "acme-reeds")
	require.NoError(t, err)

	a, _ := json.Marshal(pkgA)
	b, _ := json.Marshal(pkgB)
	assert.Equal(t, string(a), string(b))
}

func TestDiscoverEmptyRegistration(t *testing.T) {
	root := writePlugin(t, `def register_plugin():
    return []
`)

	pkg, err := NewEngine().Discover(context.Background(), root, "acme-reeds")
	require.NoError(t, err)
	assert.Empty(t, pkg.Plugins)

	data, err := json.Marshal(pkg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"plugins":[]`)
}

func TestDiscoverMissingEntryPoint(t *testing.T) {
	root := writePlugin(t, "from acme.parser import CsvParser\n")

	_, err := NewEngine().Discover(context.Background(), root, "acme-reeds")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistrationFunctionNotFound), "got %v", err)
}

func TestDiscoverMissingSource(t *testing.T) {
	_, err := NewEngine().Discover(context.Background(), t.TempDir(), "acme-reeds")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound), "got %v", err)
}

func TestDiscoverCanonicalManifestJSON(t *testing.T) {
	root := writePlugin(t, `from acme.parser import CsvParser
from acme.up import Upgrader

def register_plugin():
    return [
        ParserPlugin(name="csv", obj=CsvParser),
        UpgraderPlugin(name="up", obj=Upgrader, version_strategy="semver"),
    ]
`)

	pkg, err := NewEngine().Discover(context.Background(), root, "acme-reeds")
	require.NoError(t, err)

	data, err := json.Marshal(pkg)
	require.NoError(t, err)

	want := `{"name":"acme-reeds","plugins":[` +
		`{"name":"csv","plugin_kind":"parser",` +
		`"obj":{"module":"acme.parser","name":"CsvParser","kind":"class"},` +
		`"config":null,"call_method":null,"io_type":null,"requires_store":null},` +
		`{"name":"up","plugin_kind":"upgrader",` +
		`"obj":{"module":"acme.up","name":"Upgrader","kind":"class"},` +
		`"config":null,"call_method":null,"io_type":null,"requires_store":null,` +
		`"version_strategy":"semver","version_reader":null}],` +
		`"metadata":{}}`
	assert.Equal(t, want, string(data))
}

func TestDiscoverDependenciesMetadata(t *testing.T) {
	root := writePlugin(t, `from acme.parser import CsvParser

def register_plugin():
    return [ParserPlugin(name="csv", obj=CsvParser)]
`)
	distInfo := filepath.Join(root, "acme_reeds-1.0.dist-info")
	require.NoError(t, os.MkdirAll(distInfo, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(distInfo, "METADATA"),
		[]byte("Name: acme-reeds\nRequires-Dist: pandas (>=1.5)\nRequires-Dist: pyyaml\n"), 0o644))

	pkg, err := NewEngine().Discover(context.Background(), root, "acme-reeds")
	require.NoError(t, err)
	assert.Equal(t, []string{"pandas", "pyyaml"}, pkg.Dependencies)

	data, err := json.Marshal(pkg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"metadata":{"dependencies":["pandas","pyyaml"]}`)
}

// scanMatcher is a test double for the external structural matcher: it
// finds constructor calls with a plain text scan of the target file.
type scanMatcher struct{}

func (scanMatcher) Match(_ context.Context, pattern, file string) ([]astgrep.Match, error) {
	constructor := strings.TrimSuffix(pattern, "($$$ARGS)")
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	src := string(data)

	var matches []astgrep.Match
	for offset := 0; ; {
		i := strings.Index(src[offset:], constructor+"(")
		if i < 0 {
			break
		}
		start := offset + i
		depth := 0
		end := -1
		for j := start; j < len(src); j++ {
			switch src[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					end = j + 1
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			break
		}
		matches = append(matches, astgrep.Match{Text: src[start:end], Start: start, End: end})
		offset = end
	}
	return matches, nil
}

func TestDiscoverWithExternalMatcher(t *testing.T) {
	root := writePlugin(t, `from acme.parser import CsvParser
from acme.export import run_export

def register_plugin():
    return [
        ParserPlugin(name="csv", obj=CsvParser),
        ExporterPlugin(name="out", obj=run_export),
    ]
`)

	engine := NewEngine(WithMatcher(scanMatcher{}))
	pkg, err := engine.Discover(context.Background(), root, "acme-reeds")
	require.NoError(t, err)
	require.Len(t, pkg.Plugins, 2)
	assert.Equal(t, manifest.KindParser, pkg.Plugins[0].Kind)
	assert.Equal(t, manifest.KindExporter, pkg.Plugins[1].Kind)
}

func TestDiscoverMatcherFailureTriggersFallback(t *testing.T) {
	root := writePlugin(t, `def register_plugin():
    return [ParserPlugin(name="x", obj=Foo)]
`)

	engine := NewEngine(WithMatcher(&astgrep.CLI{Binary: filepath.Join(t.TempDir(), "missing")}))
	_, err := engine.Discover(context.Background(), root, "acme-reeds")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructuralMatchToolFailure), "got %v", err)
	assert.True(t, TriggersFallback(err))
}
