// Package resolve turns syntactically classified argument values into
// fully-qualified manifest values by consulting the file's import map and
// the enumeration registry. Resolution is a pure function of its inputs:
// no file or process state is read, so the result is deterministic for a
// given file content.
package resolve

import (
	"fmt"
	"strings"

	"github.com/trellis-data/pluginkit/discerr"
	"github.com/trellis-data/pluginkit/enum"
	"github.com/trellis-data/pluginkit/manifest"
	"github.com/trellis-data/pluginkit/pyscan"
)

// Site resolves one extracted registration site into the builder's input
// form. The first unresolvable argument aborts the site, which in turn
// aborts the whole package.
func Site(pkg string, site pyscan.Site, imports pyscan.ImportMap) (manifest.ResolvedSite, error) {
	args, err := Arguments(pkg, pyscan.ParseArguments(site.ArgsText), imports)
	if err != nil {
		return manifest.ResolvedSite{}, err
	}
	return manifest.ResolvedSite{Constructor: site.Constructor, Args: args}, nil
}

// Arguments resolves a parsed argument list against the import map,
// preserving source order.
func Arguments(pkg string, args []pyscan.Argument, imports pyscan.ImportMap) ([]manifest.Argument, error) {
	resolved := make([]manifest.Argument, 0, len(args))
	for _, arg := range args {
		value, err := resolveValue(pkg, arg, imports)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, manifest.Argument{Name: arg.Name, Value: value})
	}
	return resolved, nil
}

func resolveValue(pkg string, arg pyscan.Argument, imports pyscan.ImportMap) (manifest.Value, error) {
	v := arg.Value
	switch v.Kind {
	case pyscan.ValueString:
		return manifest.StringValue{Value: v.Text}, nil
	case pyscan.ValueNone:
		return manifest.NullValue{}, nil
	case pyscan.ValueBool:
		return manifest.BoolValue{Value: v.Bool}, nil
	case pyscan.ValueInt:
		return manifest.IntValue{Value: v.Int}, nil
	case pyscan.ValueUnsupported:
		// Retained as-is; the builder decides per field whether this
		// forces fallback.
		return manifest.UnsupportedValue{Raw: v.Text}, nil
	case pyscan.ValueIdent:
		return resolveIdentifier(pkg, arg.Name, v.Text, imports)
	case pyscan.ValueAttr:
		return resolveAttribute(pkg, arg.Name, v, imports)
	default:
		return nil, discerr.New(pkg, "resolve", discerr.CodeRequiresRuntimeInspection,
			fmt.Sprintf("argument %q has an unclassifiable value", arg.Name))
	}
}

// resolveIdentifier maps a bare identifier through the import map. A
// symbol with no import binding is assumed locally defined, which a
// single-file analysis cannot introspect without executing code.
func resolveIdentifier(pkg, argName, sym string, imports pyscan.ImportMap) (manifest.Value, error) {
	origin, ok := imports[sym]
	if !ok {
		return nil, discerr.New(pkg, "resolve", discerr.CodeUnresolvedSymbol,
			fmt.Sprintf("symbol %q is not imported in the registration file", sym)).
			WithDetails(map[string]any{"argument": argName})
	}
	if origin.Name == "" {
		// Bare module reference; only the interpreter can say what
		// passing a module object means here.
		return nil, discerr.New(pkg, "resolve", discerr.CodeRequiresRuntimeInspection,
			fmt.Sprintf("symbol %q refers to module %s, not an importable object", sym, origin.Module)).
			WithDetails(map[string]any{"argument": argName})
	}
	return &manifest.Reference{
		Module: origin.Module,
		Name:   origin.Name,
		Kind:   manifest.ObjectKindForName(origin.Name),
	}, nil
}

// resolveAttribute handles dotted chains. An attribute on a registered
// enumeration serializes as the member's literal; an attribute on a module
// binding is the symbol inside that module; anything else needs the
// interpreter.
func resolveAttribute(pkg, argName string, v pyscan.Value, imports pyscan.ImportMap) (manifest.Value, error) {
	origin, ok := imports[v.Base]
	if !ok {
		return nil, discerr.New(pkg, "resolve", discerr.CodeUnresolvedSymbol,
			fmt.Sprintf("symbol %q is not imported in the registration file", v.Base)).
			WithDetails(map[string]any{"argument": argName, "chain": strings.Join(v.Chain, ".")})
	}

	if origin.Name == "" {
		// Module binding: module.Symbol names one object inside it.
		if len(v.Chain) != 1 {
			return nil, discerr.New(pkg, "resolve", discerr.CodeRequiresRuntimeInspection,
				fmt.Sprintf("nested attribute chain %s.%s cannot be followed statically",
					v.Base, strings.Join(v.Chain, "."))).
				WithDetails(map[string]any{"argument": argName})
		}
		return &manifest.Reference{
			Module: origin.Module,
			Name:   v.Chain[0],
			Kind:   manifest.ObjectKindForName(v.Chain[0]),
		}, nil
	}

	// The canonical symbol name, independent of any local alias, is what
	// the enumeration registry is keyed on.
	if enum.IsEnum(origin.Name) {
		if len(v.Chain) == 1 {
			if literal, ok := enum.Lookup(origin.Name, v.Chain[0]); ok {
				return manifest.StringValue{Value: literal}, nil
			}
		}
		return nil, discerr.New(pkg, "resolve", discerr.CodeRequiresRuntimeInspection,
			fmt.Sprintf("%s.%s is not a known member of enumeration %s",
				v.Base, strings.Join(v.Chain, "."), origin.Name)).
			WithDetails(map[string]any{"argument": argName})
	}

	// Class-level attribute: its value exists only at runtime.
	return nil, discerr.New(pkg, "resolve", discerr.CodeRequiresRuntimeInspection,
		fmt.Sprintf("attribute %s.%s requires inspecting %s.%s at runtime",
			v.Base, strings.Join(v.Chain, "."), origin.Module, origin.Name)).
		WithDetails(map[string]any{"argument": argName})
}
