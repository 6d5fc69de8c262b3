package handlebars

import "strings"

// tagKind is the primary classification of a tag
type tagKind uint8

const (
	kindExpression tagKind = iota
	kindBlockOpen
	kindBlockClose
	kindInverse
	kindPartial
	kindDecorator
	kindComment
)

func (k tagKind) String() string {
	switch k {
	case kindExpression:
		return "expression"
	case kindBlockOpen:
		return "block"
	case kindBlockClose:
		return "close"
	case kindInverse:
		return "inverse"
	case kindPartial:
		return "partial"
	case kindDecorator:
		return "decorator"
	case kindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// tagSubKind refines kindInverse, kindPartial and kindDecorator
type tagSubKind uint8

const (
	subNone tagSubKind = iota
	// subBlock marks a partial or decorator opened with '#'
	subBlock
	// subCaret marks {{^...}}
	subCaret
	// subElse marks {{else ...}}
	subElse
)

// tag is one parsed occurrence of a {{...}} unit
type tag struct {
	// text is the full tag, braces included
	text string
	kind tagKind
	sub  tagSubKind

	// content is everything after the type character
	content     string
	helper      string
	args        string
	blockParams []string

	unescaped bool
	raw       bool
	trimLeft  bool
	trimRight bool
	escaped   bool
}

// opensBlock reports whether the tag starts a section that needs a matching close
func (t tag) opensBlock() bool {
	return t.kind == kindBlockOpen || t.sub == subBlock
}

// unwrapBraces removes one extra level of braces
func unwrapBraces(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// parseTag turns a scanned tag into its structured form
func parseTag(text string) tag {
	t := tag{text: text}
	if strings.HasPrefix(text, "\\") {
		t.escaped = true
		text = text[1:]
	}
	s := text[2 : len(text)-2]

	var ok bool
	if s, ok = unwrapBraces(s); ok {
		t.unescaped = true
		if s, ok = unwrapBraces(s); ok {
			t.raw = true
		}
	}

	if t.escaped {
		t.content = s
		t.args = s
		return t
	}

	// Whitespace control
	s = strings.Trim(s, whitespace)
	if strings.HasPrefix(s, "~") {
		t.trimLeft = true
		s = strings.TrimLeft(s[1:], whitespace)
	}
	if strings.HasSuffix(s, "~") {
		t.trimRight = true
		s = strings.TrimRight(s[:len(s)-1], whitespace)
	}
	if inner, ok := unwrapBraces(s); ok && !t.unescaped {
		t.unescaped = true
		s = inner
		if inner, ok = unwrapBraces(s); ok {
			t.raw = true
			s = inner
		}
		s = strings.Trim(s, whitespace)
	}

	if s == "" {
		return t
	}

	if s[0] == '&' {
		t.unescaped = true
		s = strings.TrimLeft(s[1:], whitespace)
	}

	switch {
	case strings.HasPrefix(s, "^"):
		t.kind, t.sub = kindInverse, subCaret
		s = strings.TrimLeft(s[1:], whitespace)
	case s == "else" || (strings.HasPrefix(s, "else") && isSpace(s[4])):
		t.kind, t.sub = kindInverse, subElse
		s = strings.TrimLeft(s[4:], whitespace)
	case s[0] == '!':
		t.kind = kindComment
		t.content = s[1:]
		return t
	case s[0] == '#':
		t.kind = kindBlockOpen
		s = s[1:]
		if strings.HasPrefix(s, ">") {
			t.kind, t.sub = kindPartial, subBlock
			s = s[1:]
		} else if strings.HasPrefix(s, "*") {
			t.kind, t.sub = kindDecorator, subBlock
			s = s[1:]
		}
		s = strings.TrimLeft(s, whitespace)
	case s[0] == '/':
		t.kind = kindBlockClose
		s = strings.TrimLeft(s[1:], whitespace)
	case s[0] == '>':
		t.kind = kindPartial
		s = strings.TrimLeft(s[1:], whitespace)
	case s[0] == '*':
		t.kind = kindDecorator
		s = strings.TrimLeft(s[1:], whitespace)
	case t.raw:
		t.kind = kindBlockOpen
	}
	t.content = s

	// Block parameters: ... as |a b|
	if strings.HasSuffix(s, "|") && len(s) > 1 {
		if open := strings.LastIndexByte(s[:len(s)-1], '|'); open >= 0 {
			head := strings.TrimRight(s[:open], whitespace)
			if strings.HasSuffix(head, " as") || head == "as" {
				t.blockParams = strings.Fields(s[open+1 : len(s)-1])
				s = strings.TrimRight(strings.TrimSuffix(head, "as"), whitespace)
			}
		}
	}

	if helper, rest, ok := nextExpr(s); ok {
		t.helper = helper
		t.args = strings.Trim(rest, whitespace)
	} else {
		t.helper = s
	}
	return t
}
