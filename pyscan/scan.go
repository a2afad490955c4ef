// Package pyscan performs the source-text analysis half of static plugin
// discovery: building the per-file import map, isolating the registration
// entry point, extracting descriptor constructor invocations, and splitting
// their keyword arguments into classified values. It is a deliberate subset
// of a real frontend: delimiter-balance matching with string and comment
// awareness, not a grammar. Everything it cannot classify is surfaced as a
// typed Unsupported value or a warning so the caller can fall back to the
// interpreter path instead of guessing.
package pyscan

// stringEnd returns the index just past the string literal whose opening
// quote sits at i. Single, double, and triple quotes are handled, with
// backslash escapes. An unterminated single-line literal ends at the
// newline; an unterminated triple-quoted literal ends at end of input.
func stringEnd(src string, i int) int {
	q := src[i]
	if i+2 < len(src) && src[i+1] == q && src[i+2] == q {
		for j := i + 3; j < len(src); j++ {
			switch src[j] {
			case '\\':
				j++
			case q:
				if j+2 < len(src) && src[j+1] == q && src[j+2] == q {
					return j + 3
				}
			}
		}
		return len(src)
	}
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return j
		case q:
			return j + 1
		}
	}
	return len(src)
}

// lineEnd returns the index of the newline terminating the line containing
// i, or the end of input.
func lineEnd(src string, i int) int {
	for j := i; j < len(src); j++ {
		if src[j] == '\n' {
			return j
		}
	}
	return len(src)
}

// matchDelimiter returns the index of the delimiter closing the one at
// open, skipping string literals and comments. The second return value is
// false when the input ends before the delimiter is balanced.
func matchDelimiter(src string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '\'', '"':
			i = stringEnd(src, i) - 1
		case '#':
			i = lineEnd(src, i)
			if i >= len(src) {
				return 0, false
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// splitTopLevel splits src at commas that sit outside every string literal
// and nested delimiter pair. Segments are returned verbatim, separators
// excluded; a trailing comma yields a final empty segment the caller drops.
func splitTopLevel(src string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\'', '"':
			i = stringEnd(src, i) - 1
		case '#':
			i = lineEnd(src, i)
			if i >= len(src) {
				i = len(src) - 1
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, src[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, src[start:])
	return parts
}

// topLevelAssign returns the index of the first '=' in src that is a
// keyword-argument assignment: outside strings and nested delimiters and
// not part of a two-character operator (==, !=, <=, >=). Returns -1 when
// there is none.
func topLevelAssign(src string) int {
	depth := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\'', '"':
			i = stringEnd(src, i) - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(src) && src[i+1] == '=' {
				i++
				continue
			}
			if i > 0 {
				switch src[i-1] {
				case '=', '!', '<', '>':
					continue
				}
			}
			return i
		}
	}
	return -1
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// isIdentifier reports whether s is a plain identifier token.
func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// isDottedPath reports whether s is a chain of identifiers joined by dots,
// with at least one dot.
func isDottedPath(s string) bool {
	dots := 0
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			if !isIdentifier(s[start:i]) {
				return false
			}
			if i < len(s) {
				dots++
				start = i + 1
			}
		}
	}
	return dots > 0
}
