package handlebars

import "strings"

// tagSpan locates a tag inside a template text.
//
// text[:litEnd] is the literal text preceding the tag and text[start:end] is
// the tag itself. An escaped tag (\{{x}}) starts at its backslash. A doubly
// escaped tag (\\{{x}}) is a regular tag preceded by one literal backslash.
type tagSpan struct {
	litEnd int
	start  int
	end    int
}

// findTag finds the next tag in text
func findTag(text string) (tagSpan, bool) {
	if len(text) < 4 {
		return tagSpan{}, false
	}

	pos := strings.Index(text, "{{")
	if pos < 0 {
		return tagSpan{}, false
	}

	// Pick the closing token from the opening braces
	rest := text[pos:]
	closeTok, fallback := "}}", ""
	switch {
	case strings.HasPrefix(rest, "{{!--"):
		closeTok, fallback = "--}}", "--~}}"
	case strings.HasPrefix(rest, "{{{{"):
		closeTok = "}}}}"
	case strings.HasPrefix(rest, "{{{"):
		closeTok = "}}}"
	}

	end := strings.Index(rest[2:], closeTok)
	if end < 0 && fallback != "" {
		closeTok = fallback
		end = strings.Index(rest[2:], closeTok)
	}
	if end < 0 {
		return tagSpan{}, false
	}
	end = pos + 2 + end + len(closeTok)

	span := tagSpan{litEnd: pos, start: pos, end: end}
	if pos > 0 && text[pos-1] == '\\' {
		if pos > 1 && text[pos-2] == '\\' {
			span.litEnd = pos - 1
		} else {
			span.litEnd = pos - 1
			span.start = pos - 1
		}
	}
	return span, true
}
