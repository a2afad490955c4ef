package pyscan

import "strings"

// AliasKind records whether a local binding uses the imported name directly
// or renames it with an "as" clause.
type AliasKind int

const (
	Direct AliasKind = iota
	Aliased
)

// Origin is the fully-qualified source of one local binding. Name is empty
// when the binding refers to a module rather than a symbol inside one.
type Origin struct {
	Module string
	Name   string
	Alias  AliasKind
}

// ImportMap maps each local symbol in a file to its origin. Later import
// statements overwrite earlier bindings of the same local name, matching
// the host language's last-binding-wins semantics.
type ImportMap map[string]Origin

// Warning records an import statement the scanner could not understand.
// Warnings never abort discovery on their own; a symbol that needed the
// skipped statement fails later, at resolution.
type Warning struct {
	Line int
	Text string
}

type logicalLine struct {
	text string
	line int
}

// logicalLines joins physical source lines into logical statements:
// backslash continuations and open delimiter pairs extend a statement
// across newlines, comments are stripped, string contents are preserved.
func logicalLines(src string) []logicalLine {
	var lines []logicalLine
	var buf []byte
	depth := 0
	lineNo := 1
	startLine := 1

	flush := func(next int) {
		if text := strings.TrimSpace(string(buf)); text != "" {
			lines = append(lines, logicalLine{text: text, line: startLine})
		}
		buf = buf[:0]
		startLine = next
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '\'', '"':
			end := stringEnd(src, i)
			buf = append(buf, src[i:end]...)
			for j := i; j < end; j++ {
				if src[j] == '\n' {
					lineNo++
				}
			}
			i = end - 1
		case '#':
			i = lineEnd(src, i) - 1
		case '(', '[', '{':
			depth++
			buf = append(buf, c)
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			buf = append(buf, c)
		case '\\':
			if i+1 < len(src) && src[i+1] == '\n' {
				buf = append(buf, ' ')
				lineNo++
				i++
				continue
			}
			buf = append(buf, c)
		case '\n':
			lineNo++
			if depth > 0 {
				buf = append(buf, ' ')
				continue
			}
			flush(lineNo)
		default:
			buf = append(buf, c)
		}
	}
	flush(lineNo)
	return lines
}

// BuildImportMap scans the file text for import statements and returns the
// resulting symbol table plus a warning for every import the scanner had
// to skip. Non-import statements are ignored entirely.
func BuildImportMap(src string) (ImportMap, []Warning) {
	imports := make(ImportMap)
	var warnings []Warning

	for _, ll := range logicalLines(src) {
		var ok bool
		switch {
		case strings.HasPrefix(ll.text, "from "):
			ok = parseFromImport(ll.text, imports)
		case strings.HasPrefix(ll.text, "import "):
			ok = parseModuleImport(ll.text, imports)
		default:
			continue
		}
		if !ok {
			warnings = append(warnings, Warning{Line: ll.line, Text: ll.text})
		}
	}
	return imports, warnings
}

// parseFromImport handles "from MODULE import a, b as c, (d, e,)". Relative
// modules and star imports are rejected: resolving either would require
// knowledge this scanner does not have.
func parseFromImport(text string, m ImportMap) bool {
	rest := strings.TrimPrefix(text, "from ")
	idx := strings.Index(rest, " import ")
	if idx < 0 {
		return false
	}
	module := strings.TrimSpace(rest[:idx])
	if !isIdentifier(module) && !isDottedPath(module) {
		return false
	}

	items := strings.TrimSpace(rest[idx+len(" import "):])
	if strings.HasPrefix(items, "(") && strings.HasSuffix(items, ")") {
		items = items[1 : len(items)-1]
	}

	// Validate every item before binding any, so a half-recognized
	// statement does not leave partial bindings behind.
	type binding struct {
		local  string
		origin Origin
	}
	var bindings []binding
	for _, item := range strings.Split(items, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, local, alias, ok := splitAsClause(item)
		if !ok || !isIdentifier(name) || !isIdentifier(local) {
			return false
		}
		bindings = append(bindings, binding{
			local:  local,
			origin: Origin{Module: module, Name: name, Alias: alias},
		})
	}
	if len(bindings) == 0 {
		return false
	}
	for _, b := range bindings {
		m[b.local] = b.origin
	}
	return true
}

// parseModuleImport handles "import a.b.c" and "import a.b.c as x". An
// unaliased dotted import binds the top-level module name, matching the
// host language.
func parseModuleImport(text string, m ImportMap) bool {
	items := strings.TrimPrefix(text, "import ")

	type binding struct {
		local  string
		origin Origin
	}
	var bindings []binding
	for _, item := range strings.Split(items, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		module, local, alias, ok := splitAsClause(item)
		if !ok || (!isIdentifier(module) && !isDottedPath(module)) {
			return false
		}
		if alias == Direct {
			top := module
			if dot := strings.IndexByte(top, '.'); dot >= 0 {
				top = top[:dot]
			}
			bindings = append(bindings, binding{local: top, origin: Origin{Module: top}})
			continue
		}
		if !isIdentifier(local) {
			return false
		}
		bindings = append(bindings, binding{
			local:  local,
			origin: Origin{Module: module, Alias: Aliased},
		})
	}
	if len(bindings) == 0 {
		return false
	}
	for _, b := range bindings {
		m[b.local] = b.origin
	}
	return true
}

// splitAsClause splits "name as alias" into its parts. Without an "as"
// clause the local name equals the imported name.
func splitAsClause(item string) (name, local string, alias AliasKind, ok bool) {
	fields := strings.Fields(item)
	switch len(fields) {
	case 1:
		return fields[0], fields[0], Direct, true
	case 3:
		if fields[1] != "as" {
			return "", "", Direct, false
		}
		return fields[0], fields[2], Aliased, true
	default:
		return "", "", Direct, false
	}
}
