package handlebars

import "strings"

const whitespace = " \t\r\n"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// isIDChar reports whether c may appear in an identifier
func isIDChar(c byte) bool {
	switch c {
	case ' ', '!', '"', '#', '%', '&', '\'', '(', ')', '*', '+', ',', '.', '/',
		';', '<', '=', '>', '@', '[', '\\', ']', '^', '`', '{', '|', '}', '~',
		'\t', '\r', '\n', 0:
		return false
	}
	return true
}

// cursor walks an expression list. Failed scans restore pos.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.s) && isSpace(c.s[c.pos]) {
		c.pos++
	}
}

func (c *cursor) done() bool { return c.pos >= len(c.s) }

func (c *cursor) peek() byte { return c.s[c.pos] }

// expr scans one expression starting at the cursor
func (c *cursor) expr(allowKeyValue bool) (string, bool) {
	c.skipSpace()
	if c.done() {
		return "", false
	}
	start := c.pos

	switch c.peek() {
	case '"', '\'':
		if !c.quoted() {
			c.pos = start
			return "", false
		}
		return c.s[start:c.pos], true
	case '(':
		if !c.group() {
			c.pos = start
			return "", false
		}
		return c.s[start:c.pos], true
	}

	if allowKeyValue {
		i := c.pos
		for i < len(c.s) && isIDChar(c.s[i]) {
			i++
		}
		if i > c.pos && i < len(c.s) && c.s[i] == '=' {
			save := c.pos
			c.pos = i + 1
			if _, ok := c.expr(false); ok {
				return c.s[start:c.pos], true
			}
			c.pos = save
		}
	}

	c.bare()
	if c.pos == start {
		return "", false
	}
	return c.s[start:c.pos], true
}

// quoted consumes a string literal. A backslash escapes the quote character.
func (c *cursor) quoted() bool {
	q := c.peek()
	for i := c.pos + 1; i < len(c.s); i++ {
		if c.s[i] == q && c.s[i-1] != '\\' {
			c.pos = i + 1
			return true
		}
	}
	return false
}

// group consumes a balanced parenthesized sub-expression
func (c *cursor) group() bool {
	c.pos++
	for {
		c.skipSpace()
		if c.done() {
			return false
		}
		if c.peek() == ')' {
			c.pos++
			return true
		}
		if _, ok := c.expr(true); !ok {
			return false
		}
	}
}

// bare consumes a path token up to whitespace or a closing parenthesis.
// Bracketed segments may contain either.
func (c *cursor) bare() {
	for c.pos < len(c.s) {
		ch := c.s[c.pos]
		if isSpace(ch) || ch == ')' {
			return
		}
		if ch == '[' {
			if end := strings.IndexByte(c.s[c.pos:], ']'); end > 0 {
				c.pos += end + 1
				continue
			}
		}
		c.pos++
	}
}

// nextExpr splits the first expression off text
func nextExpr(text string) (expr, rest string, ok bool) {
	c := cursor{s: text}
	expr, ok = c.expr(true)
	if !ok {
		return "", text, false
	}
	return expr, text[c.pos:], true
}

// splitExprs returns every expression of text until the first malformed one
func splitExprs(text string) []string {
	var out []string
	for {
		expr, rest, ok := nextExpr(text)
		if !ok {
			return out
		}
		out = append(out, expr)
		text = rest
	}
}

// splitKeyValue splits a hash argument. ok is false for positional expressions.
func splitKeyValue(expr string) (key, val string, ok bool) {
	if expr == "" || expr[0] == '(' || expr[0] == '"' || expr[0] == '\'' {
		return "", "", false
	}
	i := strings.IndexByte(expr, '=')
	if i <= 0 || i == len(expr)-1 {
		return "", "", false
	}
	for j := 0; j < i; j++ {
		if !isIDChar(expr[j]) {
			return "", "", false
		}
	}
	return expr[:i], expr[i+1:], true
}
