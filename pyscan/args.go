package pyscan

import (
	"strconv"
	"strings"
)

// ValueKind discriminates the syntactic shape of one argument value.
type ValueKind int

const (
	// ValueString is a plain quoted literal; Text holds the content with
	// the quotes stripped and escapes left as written.
	ValueString ValueKind = iota
	// ValueIdent is a bare identifier to be resolved against the import map.
	ValueIdent
	// ValueAttr is a dotted chain; Base holds the leading identifier and
	// Chain the attribute names after it.
	ValueAttr
	// ValueNone is the None literal.
	ValueNone
	// ValueBool is a True or False literal.
	ValueBool
	// ValueInt is an integer literal.
	ValueInt
	// ValueUnsupported is the terminal classification for shapes the
	// scanner cannot evaluate statically: nested calls, collection
	// displays, f-strings, conditional expressions. Text holds the raw
	// source for diagnostics.
	ValueUnsupported
)

// Value is one classified argument value.
type Value struct {
	Kind  ValueKind
	Text  string
	Bool  bool
	Int   int64
	Base  string
	Chain []string
}

// Argument is one constructor argument in source order. Name is empty for
// positional arguments, which the builder treats as unresolvable.
type Argument struct {
	Name  string
	Value Value
}

// ParseArguments splits a site's argument text into keyword pairs and
// classifies each value. Splitting is delimiter-balance aware, so commas
// inside nested calls or collections do not separate arguments.
// Classification never fails: shapes outside the supported set come back
// as ValueUnsupported and the builder decides whether that forces fallback.
func ParseArguments(argsText string) []Argument {
	var args []Argument
	for _, part := range splitTopLevel(argsText) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		eq := topLevelAssign(part)
		if eq < 0 {
			args = append(args, Argument{Value: classifyValue(part)})
			continue
		}
		name := strings.TrimSpace(part[:eq])
		value := strings.TrimSpace(part[eq+1:])
		if !isIdentifier(name) {
			// **kwargs expansion or an expression on the left side.
			args = append(args, Argument{Value: Value{Kind: ValueUnsupported, Text: part}})
			continue
		}
		args = append(args, Argument{Name: name, Value: classifyValue(value)})
	}
	return args
}

func classifyValue(text string) Value {
	if lit, ok := stringLiteral(text); ok {
		return Value{Kind: ValueString, Text: lit}
	}

	switch text {
	case "None":
		return Value{Kind: ValueNone}
	case "True":
		return Value{Kind: ValueBool, Bool: true}
	case "False":
		return Value{Kind: ValueBool, Bool: false}
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Value{Kind: ValueInt, Int: n}
	}

	if isIdentifier(text) {
		return Value{Kind: ValueIdent, Text: text}
	}

	if isDottedPath(text) {
		parts := strings.Split(text, ".")
		return Value{Kind: ValueAttr, Base: parts[0], Chain: parts[1:]}
	}

	return Value{Kind: ValueUnsupported, Text: text}
}

// stringLiteral reports whether text is exactly one quoted literal and
// returns its content with the quotes stripped. Escape sequences are kept
// verbatim; prefixed literals (f-strings, raw, bytes) are not plain
// strings and fall through to Unsupported.
func stringLiteral(text string) (string, bool) {
	if len(text) < 2 {
		return "", false
	}
	q := text[0]
	if q != '\'' && q != '"' {
		return "", false
	}
	if stringEnd(text, 0) != len(text) {
		return "", false
	}
	if len(text) >= 6 && text[1] == q && text[2] == q {
		return text[3 : len(text)-3], true
	}
	return text[1 : len(text)-1], true
}
