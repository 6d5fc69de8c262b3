package handlebars

import (
	"io"
	"strconv"
	"strings"

	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// isLiteralValue matches keyword literals, also in their [keyword] form
func isLiteralValue(expr, keyword string) bool {
	return expr == keyword || expr == "["+keyword+"]"
}

func isLiteralString(expr string) bool {
	if len(expr) < 2 {
		return false
	}
	q := expr[0]
	return (q == '"' || q == '\'') && expr[len(expr)-1] == q
}

func isLiteralInteger(expr string) bool {
	if expr != "" && (expr[0] == '-' || expr[0] == '+') {
		expr = expr[1:]
	}
	if expr == "" {
		return false
	}
	for i := 0; i < len(expr); i++ {
		if expr[i] < '0' || expr[i] > '9' {
			return false
		}
	}
	return true
}

func isLiteral(expr string) bool {
	for _, kw := range []string{"true", "false", "null", "undefined"} {
		if isLiteralValue(expr, kw) {
			return true
		}
	}
	return expr == "" || isLiteralString(expr) || isLiteralInteger(expr)
}

// unescapeString strips the quotes of a string literal and decodes its escapes
func unescapeString(s string) string {
	if isLiteralString(s) {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch c := s[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\\', '\'', '"':
			sb.WriteByte(c)
		default:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// argID is the id a helper sees for one argument expression
func argID(expr string) string {
	if isLiteral(expr) || strings.HasPrefix(expr, "(") {
		return ""
	}
	switch {
	case strings.HasPrefix(expr, "./"):
		return expr[2:]
	case strings.HasPrefix(expr, "this."):
		return expr[5:]
	case expr == "this", expr == ".":
		return ""
	}
	return expr
}

// eval evaluates one expression. With literals off, keywords, strings,
// integers and sub-expressions are looked up as paths.
func (s *renderState) eval(sc scope, expr string, literals bool) (value.Value, bool, error) {
	expr = strings.Trim(expr, whitespace)

	if literals {
		switch {
		case isLiteralValue(expr, "true"):
			return value.Bool(true), true, nil
		case isLiteralValue(expr, "false"):
			return value.Bool(false), true, nil
		case isLiteralValue(expr, "null"):
			return value.Null(), true, nil
		case isLiteralValue(expr, "undefined"), expr == "":
			return value.Undefined(), true, nil
		}
	}
	if expr == "." || expr == "this" {
		return sc.ctx, true, nil
	}
	if literals {
		switch {
		case isLiteralString(expr):
			return value.String(unescapeString(expr)), true, nil
		case isLiteralInteger(expr):
			i, err := strconv.ParseInt(expr, 10, 64)
			if err != nil {
				return value.Int(0), true, nil
			}
			return value.Int(i), true, nil
		case strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")"):
			v, err := s.evalSubexpr(sc, expr[1:len(expr)-1])
			return v, true, err
		}
	}

	// Private data
	if strings.HasPrefix(expr, "@") {
		v, ok := s.evalData(sc, expr[1:])
		return v, ok, nil
	}

	// Parent context walk
	if strings.HasPrefix(expr, "..") {
		v, ok := s.evalParent(sc, expr)
		return v, ok, nil
	}

	if v, ok := lookupPath(sc.ctx, expr); ok {
		return v, true, nil
	}
	if sc.blockValues != nil {
		if v, ok := lookupPath(value.ObjectOf(sc.blockValues), expr); ok {
			return v, true, nil
		}
	}
	return value.Undefined(), false, nil
}

// evalSubexpr calls the helper named by the first expression of inner
func (s *renderState) evalSubexpr(sc scope, inner string) (value.Value, error) {
	name, rest, ok := nextExpr(inner)
	if !ok {
		return value.Undefined(), nil
	}
	fn, found := s.helpers[name]
	if !found {
		fn = s.helpers["helperMissing"]
	}

	args, cb, err := s.setupArgs(sc, rest)
	if err != nil {
		return value.Undefined(), err
	}
	cb.Name = name
	cb.out = newSink(io.Discard)
	return fn(args, cb)
}

// evalData resolves a data reference with the @ already removed
func (s *renderState) evalData(sc scope, path string) (value.Value, bool) {
	data := sc.data

	if path == "root" || strings.HasPrefix(path, "root.") || strings.HasPrefix(path, "root/") {
		root := s.rootOf(sc.data)
		if path == "root" {
			return root, true
		}
		return lookupPath(root, path[5:])
	}

	for {
		if strings.HasPrefix(path, "./") {
			path = path[2:]
			continue
		}
		if strings.HasPrefix(path, "../") {
			path = path[3:]
			if data = data.Parent(); data == nil {
				return value.Undefined(), false
			}
			continue
		}
		break
	}
	if data == nil {
		return value.Undefined(), false
	}
	return lookupPath(value.ObjectOf(data), path)
}

// evalParent resolves a ../ path against the root using the context path
// recorded in the data frame
func (s *renderState) evalParent(sc scope, expr string) (value.Value, bool) {
	var segs []string
	if sc.data != nil {
		if cp := sc.data.Find("contextPath").Str(); cp != "" {
			segs = strings.Split(cp, ".")
		}
	}

	rest := expr
	for strings.HasPrefix(rest, "..") {
		rest = strings.TrimPrefix(rest[2:], "/")
		if len(segs) > 0 {
			segs = segs[:len(segs)-1]
		}
	}

	root := s.rootOf(sc.data)
	for n := len(segs); n >= 0; n-- {
		path := strings.Join(segs[:n], ".")
		switch {
		case path == "":
			path = rest
		case rest != "":
			path += "." + rest
		}
		if v, ok := lookupPath(root, path); ok {
			return v, true
		}
	}
	return value.Undefined(), false
}

func (s *renderState) rootOf(data *value.Object) value.Value {
	if data != nil {
		if root, ok := data.Get("root"); ok {
			return root
		}
	}
	return s.root
}

// setupArgs evaluates the argument list of a helper call
func (s *renderState) setupArgs(sc scope, text string) ([]value.Value, *Callback, error) {
	cb := &Callback{
		Hash:    value.NewObject(),
		Context: sc.ctx,
		Data:    sc.data,
		state:   s,
	}

	var args []value.Value
	for _, expr := range splitExprs(text) {
		if key, val, ok := splitKeyValue(expr); ok {
			v, _, err := s.eval(sc, val, true)
			if err != nil {
				return nil, nil, err
			}
			cb.Hash.Set(key, v)
			continue
		}
		v, _, err := s.eval(sc, expr, true)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, v)
		cb.IDs = append(cb.IDs, argID(expr))
	}
	return args, cb, nil
}

