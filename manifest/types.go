package manifest

import "unicode"

// PluginKind discriminates the manifest record for one registered plugin.
// The set is closed; the mapping from constructor names is total over it.
type PluginKind string

const (
	KindParser   PluginKind = "parser"
	KindUpgrader PluginKind = "upgrader"
	KindExporter PluginKind = "exporter"
	KindBase     PluginKind = "base"
)

// constructorKinds is the closed mapping from descriptor constructor names
// to plugin kinds. Adding a plugin kind means extending this table and the
// per-kind field table in builder.go.
var constructorKinds = map[string]PluginKind{
	"ParserPlugin":   KindParser,
	"UpgraderPlugin": KindUpgrader,
	"ExporterPlugin": KindExporter,
	"BasePlugin":     KindBase,
}

// KindForConstructor maps a descriptor constructor name to its plugin kind.
// The second return value is false for names outside the closed set.
func KindForConstructor(name string) (PluginKind, bool) {
	kind, ok := constructorKinds[name]
	return kind, ok
}

// Constructors returns the descriptor constructor names the extractor
// should look for, in a fixed order.
func Constructors() []string {
	return []string{"ParserPlugin", "UpgraderPlugin", "ExporterPlugin", "BasePlugin"}
}

// ObjectKind classifies what a resolved reference points at.
type ObjectKind string

const (
	ObjectClass    ObjectKind = "class"
	ObjectFunction ObjectKind = "function"
)

// ObjectKindForName infers the object kind from a symbol's naming
// convention: a leading uppercase letter means a class, anything else a
// function. This mirrors how the dynamic path reports introspected objects.
func ObjectKindForName(name string) ObjectKind {
	for _, r := range name {
		if unicode.IsUpper(r) {
			return ObjectClass
		}
		return ObjectFunction
	}
	return ObjectFunction
}

// Reference is the fully-qualified identity of a value imported from
// elsewhere, independent of the local alias used to reach it.
type Reference struct {
	Module string     `json:"module"`
	Name   string     `json:"name"`
	Kind   ObjectKind `json:"kind"`
}

// Value is one classified constructor-argument value: either a literal or
// a resolved reference. The concrete types below are the only
// implementations.
type Value interface {
	isValue()
}

// StringValue is a plain string literal (or an enum member serialized as
// its literal form).
type StringValue struct {
	Value string
}

// BoolValue is a True/False literal.
type BoolValue struct {
	Value bool
}

// IntValue is an integer literal.
type IntValue struct {
	Value int64
}

// NullValue is the None literal.
type NullValue struct{}

// UnsupportedValue is a terminal classification for value shapes the static
// engine cannot evaluate (nested calls, collection displays, f-strings,
// conditional expressions). The builder decides per field whether it is
// tolerable or forces fallback.
type UnsupportedValue struct {
	Raw string
}

func (StringValue) isValue()      {}
func (BoolValue) isValue()        {}
func (IntValue) isValue()         {}
func (NullValue) isValue()        {}
func (UnsupportedValue) isValue() {}
func (*Reference) isValue()       {}

// Argument is one keyword argument in source order.
type Argument struct {
	Name  string
	Value Value
}

// ResolvedSite is the builder's input for one registration site: the
// constructor name as written in source plus its resolved arguments in
// source order.
type ResolvedSite struct {
	Constructor string
	Args        []Argument
}

// Plugin is the resolved, engine-agnostic record for one registered plugin.
// Args preserves source order for diffing and debugging; the serialized
// manifest shape is produced by MarshalJSON in json.go.
type Plugin struct {
	Name            string
	Kind            PluginKind
	Obj             *Reference
	Config          *Reference
	CallMethod      *string
	IOType          *string
	RequiresStore   *bool
	VersionStrategy *string
	VersionReader   *Reference

	Args []Argument `json:"-"`
}

// Package is the manifest for one plugin package. It is constructed by the
// builder and persisted by an external manifest store.
type Package struct {
	Name         string
	Plugins      []Plugin
	Dependencies []string
}
