// Package pluginkit implements static plugin discovery for Trellis data
// pipelines.
//
// Trellis plugins are Python packages that declare their parsers,
// upgraders, exporters, and base plugins by returning descriptor objects
// from a register_plugin entry point. The conventional way to read those
// declarations is to boot an interpreter, import the package, and
// introspect the descriptors, which costs seconds per package. The Engine
// in this module produces the same manifest by analyzing the registration
// source file without executing it: it parses the file's imports into a
// symbol table, isolates the entry point body, extracts each descriptor
// constructor invocation, classifies and resolves the arguments, and
// serializes the result byte-compatibly with the interpreter path.
//
// Discovery is all-or-nothing. Any construct the static analysis cannot
// prove (a computed value, a class attribute, a symbol with no import) is
// reported as a typed error from the discerr package, never guessed at,
// and the Manager reruns that package through the dynamic path. The
// Manager also wires the surrounding concerns: the fingerprint-keyed
// manifest cache, the manifest store, fallback serialization, and
// bounded-parallel discovery across packages.
//
// Basic usage:
//
//	engine := pluginkit.NewEngine()
//	pkg, err := engine.Discover(ctx, "/venvs/acme/lib/python3.12/site-packages", "acme-reeds")
//	if err != nil {
//		// route this package through the dynamic path
//	}
package pluginkit
