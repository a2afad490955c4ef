package manifest

import (
	"fmt"

	"github.com/trellis-data/pluginkit/discerr"
)

// fieldSpec describes one keyword argument the descriptor constructors
// accept. The table is closed: arguments outside it cannot be validated
// statically and force fallback.
type fieldSpec struct {
	required bool
	// tolerateUnsupported permits an Unsupported value to serialize as
	// null instead of aborting. No current field tolerates it: every
	// schema field affects the serialized manifest, so an unevaluated
	// value would drift from the dynamic path.
	tolerateUnsupported bool
	upgraderOnly        bool
}

var pluginFields = map[string]fieldSpec{
	"name":             {required: true},
	"obj":              {required: true},
	"config":           {},
	"call_method":      {},
	"io_type":          {},
	"requires_store":   {},
	"version_strategy": {upgraderOnly: true},
	"version_reader":   {upgraderOnly: true},
}

// Build assembles the Package manifest from resolved registration sites.
// Sites are consumed in source order; the first unresolvable site aborts
// the whole package (no partial manifests).
func Build(packageName string, dependencies []string, sites []ResolvedSite) (*Package, error) {
	plugins := make([]Plugin, 0, len(sites))
	for _, site := range sites {
		plugin, err := buildPlugin(packageName, site)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, *plugin)
	}

	return &Package{
		Name:         packageName,
		Plugins:      plugins,
		Dependencies: dependencies,
	}, nil
}

func buildPlugin(packageName string, site ResolvedSite) (*Plugin, error) {
	kind, ok := KindForConstructor(site.Constructor)
	if !ok {
		return nil, discerr.New(packageName, "build", discerr.CodeUnknownPluginKind,
			fmt.Sprintf("constructor %q is not a known plugin descriptor", site.Constructor))
	}

	plugin := &Plugin{Kind: kind, Args: site.Args}
	seen := make(map[string]bool, len(site.Args))

	for _, arg := range site.Args {
		if arg.Name == "" {
			return nil, discerr.New(packageName, "build", discerr.CodeRequiresRuntimeInspection,
				"positional constructor arguments cannot be matched statically").
				WithDetails(map[string]any{"constructor": site.Constructor})
		}

		spec, ok := pluginFields[arg.Name]
		if !ok || (spec.upgraderOnly && kind != KindUpgrader) {
			// The descriptor model may or may not accept this keyword;
			// only the runtime validator knows.
			return nil, discerr.New(packageName, "build", discerr.CodeRequiresRuntimeInspection,
				fmt.Sprintf("argument %q is outside the static field table for kind %q", arg.Name, kind))
		}
		seen[arg.Name] = true

		if _, unsupported := arg.Value.(UnsupportedValue); unsupported {
			if spec.tolerateUnsupported {
				continue
			}
			return nil, discerr.New(packageName, "build", discerr.CodeRequiresRuntimeInspection,
				fmt.Sprintf("argument %q has a value the static engine cannot evaluate", arg.Name)).
				WithDetails(map[string]any{"raw": arg.Value.(UnsupportedValue).Raw})
		}

		if err := setField(packageName, plugin, arg); err != nil {
			return nil, err
		}
	}

	for name, spec := range pluginFields {
		if spec.required && !seen[name] {
			// The missing value would come from a descriptor-class
			// default, which only runtime inspection can observe.
			return nil, discerr.New(packageName, "build", discerr.CodeRequiresRuntimeInspection,
				fmt.Sprintf("required argument %q is absent from the %s site", name, site.Constructor))
		}
	}

	return plugin, nil
}

func setField(packageName string, plugin *Plugin, arg Argument) error {
	mismatch := func(want string) error {
		return discerr.New(packageName, "build", discerr.CodeRequiresRuntimeInspection,
			fmt.Sprintf("argument %q expects a %s, got %T", arg.Name, want, arg.Value))
	}

	switch arg.Name {
	case "name":
		s, ok := arg.Value.(StringValue)
		if !ok {
			return mismatch("string literal")
		}
		plugin.Name = s.Value
	case "obj":
		ref, ok := arg.Value.(*Reference)
		if !ok {
			return mismatch("reference")
		}
		plugin.Obj = ref
	case "config":
		switch v := arg.Value.(type) {
		case *Reference:
			plugin.Config = v
		case NullValue:
		default:
			return mismatch("reference or None")
		}
	case "call_method":
		switch v := arg.Value.(type) {
		case StringValue:
			plugin.CallMethod = &v.Value
		case NullValue:
		default:
			return mismatch("string literal or None")
		}
	case "io_type":
		switch v := arg.Value.(type) {
		case StringValue:
			plugin.IOType = &v.Value
		case NullValue:
		default:
			return mismatch("string literal or None")
		}
	case "requires_store":
		switch v := arg.Value.(type) {
		case BoolValue:
			plugin.RequiresStore = &v.Value
		case NullValue:
		default:
			return mismatch("bool literal or None")
		}
	case "version_strategy":
		switch v := arg.Value.(type) {
		case StringValue:
			plugin.VersionStrategy = &v.Value
		case NullValue:
		default:
			return mismatch("string literal or None")
		}
	case "version_reader":
		switch v := arg.Value.(type) {
		case *Reference:
			plugin.VersionReader = v
		case NullValue:
		default:
			return mismatch("reference or None")
		}
	}
	return nil
}
