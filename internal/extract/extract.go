// Package extract locates top-level function definitions in PowerShell-style
// source text.
//
// A definition starts at the keyword `function`, followed by an identifier of
// word characters and hyphens, followed by an opening brace, and runs through
// the brace that closes the body. The body is walked with an explicit
// brace-depth count; string literals and comments are opaque, so braces
// inside them do not affect the count.
package extract

import "regexp"

// Span is one complete function definition within a document.
type Span struct {
	Name  string
	Start int // byte offset of the `function` keyword
	End   int // byte offset one past the closing brace
	Text  string
}

var headerRe = regexp.MustCompile(`function\s+([\w-]+)\s*\{`)

// Functions scans doc and returns every top-level function definition, in
// document order. A document with no definitions yields an empty slice; the
// caller treats it as already final. Headers whose body brace is never
// closed are skipped.
func Functions(doc string) []Span {
	var spans []Span
	next := 0
	for _, m := range headerRe.FindAllStringSubmatchIndex(doc, -1) {
		start := m[0]
		if start < next {
			// Header inside a span already captured: nested function.
			continue
		}
		open := m[1] - 1 // the `{` is the last byte of the header match
		end, ok := scanBody(doc, open)
		if !ok {
			continue
		}
		spans = append(spans, Span{
			Name:  doc[m[2]:m[3]],
			Start: start,
			End:   end,
			Text:  doc[start:end],
		})
		next = end
	}
	return spans
}

// scanBody walks from the opening brace at open until the brace depth
// returns to zero. Returns the offset one past the closing brace.
func scanBody(doc string, open int) (end int, ok bool) {
	depth := 0
	i := open
	for i < len(doc) {
		switch doc[i] {
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
			if depth == 0 {
				return i, true
			}
		case '\'':
			i = skipSingleQuoted(doc, i)
		case '"':
			i = skipDoubleQuoted(doc, i)
		case '#':
			i = skipLineComment(doc, i)
		case '<':
			if i+1 < len(doc) && doc[i+1] == '#' {
				i = skipBlockComment(doc, i)
			} else {
				i++
			}
		default:
			i++
		}
	}
	return 0, false
}

// skipSingleQuoted advances past a single-quoted literal starting at i.
// A doubled quote ('') is an escaped quote, not a terminator.
func skipSingleQuoted(doc string, i int) int {
	i++ // opening quote
	for i < len(doc) {
		if doc[i] == '\'' {
			if i+1 < len(doc) && doc[i+1] == '\'' {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

// skipDoubleQuoted advances past a double-quoted literal starting at i.
// Backtick escapes the next character; a doubled quote ("") is escaped.
func skipDoubleQuoted(doc string, i int) int {
	i++ // opening quote
	for i < len(doc) {
		switch doc[i] {
		case '`':
			i += 2
		case '"':
			if i+1 < len(doc) && doc[i+1] == '"' {
				i += 2
				continue
			}
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipLineComment(doc string, i int) int {
	for i < len(doc) && doc[i] != '\n' {
		i++
	}
	return i
}

func skipBlockComment(doc string, i int) int {
	i += 2 // `<#`
	for i+1 < len(doc) {
		if doc[i] == '#' && doc[i+1] == '>' {
			return i + 2
		}
		i++
	}
	return len(doc)
}
