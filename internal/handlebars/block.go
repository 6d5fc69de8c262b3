package handlebars

import "strings"

// blockMatch is the result of scanning a block body
type blockMatch struct {
	fn         string
	inverse    string
	inverseTag tag
	hasInverse bool
	// rest is the text following the close tag
	rest string
}

// matchBlock finds the close tag for a block opened by open, splitting
// the body at the first else or caret tag of the outer level.
//
// A non-empty diag is an inline diagnostic: the block could not be matched
// and rendering continues with rest.
func matchBlock(name string, open tag, text string, chained bool) (m blockMatch, diag string) {
	if open.trimRight {
		text = strings.TrimLeft(text, whitespace)
	}

	depth := 1
	bodyStart := 0
	inInverse := false
	closed := false
	pos := 0

	for pos < len(text) {
		span, ok := findTag(text[pos:])
		if !ok {
			break
		}
		tagStart := pos + span.start
		cur := parseTag(text[tagStart : pos+span.end])
		pos += span.end

		switch {
		case open.raw:
			// Raw blocks only end at their own raw close tag
			if cur.kind != kindBlockClose || !cur.raw || cur.content != name {
				continue
			}
			m.setBody(text[bodyStart:tagStart], false, cur.trimLeft)
			closed = true
		case cur.escaped:
			continue
		case cur.opensBlock():
			depth++
		case cur.kind == kindInverse && cur.sub == subCaret && cur.helper != "":
			// {{^x}} nested inside a block is a section of its own
			depth++
		case cur.kind == kindBlockClose:
			depth--
			if depth == 0 {
				if cur.content != name {
					return blockMatch{rest: text[pos:]}, diagMismatchedClose(cur.text, name)
				}
				m.setBody(text[bodyStart:tagStart], inInverse, cur.trimLeft)
				closed = true
			}
		}
		if closed {
			if cur.trimRight {
				pos += len(text[pos:]) - len(strings.TrimLeft(text[pos:], whitespace))
			}
			break
		}

		if depth == 1 && !inInverse && cur.kind == kindInverse {
			m.setBody(text[bodyStart:tagStart], false, cur.trimLeft)
			m.inverseTag = cur
			m.hasInverse = true
			inInverse = true
			if cur.trimRight {
				pos += len(text[pos:]) - len(strings.TrimLeft(text[pos:], whitespace))
			}
			bodyStart = pos
		}
	}

	if !closed {
		if !chained {
			return blockMatch{}, diagMissingClose(name)
		}
		m.setBody(text[bodyStart:], inInverse, false)
		pos = len(text)
	}
	if !open.raw {
		m.fn = trimStandaloneLines(m.fn)
	}
	m.rest = text[pos:]
	return m, ""
}

// setBody stores the section that just ended
func (m *blockMatch) setBody(body string, inverse, trim bool) {
	if trim {
		body = strings.TrimRight(body, whitespace)
	}
	if inverse {
		m.inverse = body
	} else {
		m.fn = body
	}
}

// trimStandaloneLines drops an all-blank first line, newline included, and
// the blanks after the last newline
func trimStandaloneLines(body string) string {
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isBlank(body[:nl]) {
		body = body[nl+1:]
	}
	if nl := strings.LastIndexByte(body, '\n'); nl >= 0 && isBlank(body[nl+1:]) {
		body = body[:nl+1]
	}
	return body
}

func isBlank(s string) bool {
	return strings.Trim(s, " \t\r") == ""
}
