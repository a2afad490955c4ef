package pyscan

import (
	"strings"

	"github.com/trellis-data/pluginkit/discerr"
)

// Body is the isolated text of the registration entry point's body, plus
// the byte offset of its first character in the original file so site
// spans can be reported in file coordinates.
type Body struct {
	Text   string
	Offset int
}

// Site is one descriptor constructor invocation found inside the entry
// point: the constructor name as written, the raw text between its
// parentheses, and the byte span of the whole call in the original file.
type Site struct {
	Constructor string
	ArgsText    string
	Start       int
	End         int
}

// ExtractRegistrationBody locates the module-level function fnName in the
// file text and returns its body span. The function must be declared at
// column zero; its body is every following line indented deeper, up to the
// next module-level statement.
func ExtractRegistrationBody(pkg, src, fnName string) (Body, error) {
	needle := "def " + fnName
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\'', '"':
			i = stringEnd(src, i) - 1
			continue
		case '#':
			i = lineEnd(src, i)
			continue
		}
		if i != 0 && src[i-1] != '\n' {
			continue
		}
		if !strings.HasPrefix(src[i:], needle) {
			continue
		}
		rest := i + len(needle)
		for rest < len(src) && (src[rest] == ' ' || src[rest] == '\t') {
			rest++
		}
		if rest >= len(src) || src[rest] != '(' {
			continue
		}
		close, ok := matchDelimiter(src, rest)
		if !ok {
			break
		}
		start := lineEnd(src, close) + 1
		if start >= len(src) {
			return Body{Text: "", Offset: len(src)}, nil
		}
		return Body{Text: src[start:bodyEnd(src, start)], Offset: start}, nil
	}
	return Body{}, discerr.New(pkg, "extract", discerr.CodeRegistrationFunctionNotFound,
		"entry point "+fnName+" is not defined at module level")
}

// bodyEnd returns the index just past the function body starting at start:
// the beginning of the first non-blank line at column zero, skipping lines
// swallowed by string literals.
func bodyEnd(src string, start int) int {
	i := start
	for i < len(src) {
		// Blank or indented lines belong to the body.
		if src[i] == '\n' {
			i++
			continue
		}
		if i == start || src[i-1] == '\n' {
			if src[i] != ' ' && src[i] != '\t' {
				return i
			}
		}
		switch src[i] {
		case '\'', '"':
			i = stringEnd(src, i)
		case '#':
			i = lineEnd(src, i)
		default:
			i++
		}
	}
	return len(src)
}

// FindSites scans the body for invocations of the given constructor names
// and returns them in source order. A match must sit on identifier
// boundaries and be immediately applied as a call; nested calls inside an
// argument list belong to their enclosing site and are never reported
// separately.
func FindSites(body Body, constructors []string) []Site {
	wanted := make(map[string]bool, len(constructors))
	for _, name := range constructors {
		wanted[name] = true
	}

	var sites []Site
	src := body.Text
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\'', '"':
			i = stringEnd(src, i) - 1
			continue
		case '#':
			i = lineEnd(src, i)
			continue
		}
		if !isIdentStart(src[i]) || (i > 0 && isIdentPart(src[i-1])) {
			continue
		}
		end := i + 1
		for end < len(src) && isIdentPart(src[end]) {
			end++
		}
		name := src[i:end]
		if !wanted[name] {
			i = end - 1
			continue
		}
		open := end
		for open < len(src) && (src[open] == ' ' || src[open] == '\t') {
			open++
		}
		if open >= len(src) || src[open] != '(' {
			i = end - 1
			continue
		}
		close, ok := matchDelimiter(src, open)
		if !ok {
			i = end - 1
			continue
		}
		sites = append(sites, Site{
			Constructor: name,
			ArgsText:    src[open+1 : close],
			Start:       body.Offset + i,
			End:         body.Offset + close + 1,
		})
		i = close
	}
	return sites
}
