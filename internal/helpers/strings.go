package helpers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aescanero/dago-hbs-renderer/internal/handlebars"
	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

const spaceChars = " \t\r\n"

// MaxRepeatBytes caps the output of the repeat helper
const MaxRepeatBytes = 1 << 24

// RegisterStrings registers the string helpers. Helpers that take a string
// subject also accept it as a block body: {{#uppercase}}text{{/uppercase}}.
func RegisterStrings(r Registrar) {
	register(r, mapString("uppercase", strings.ToUpper), "uppercase", "upper", "to_upper")
	register(r, mapString("lowercase", strings.ToLower), "lowercase", "lower", "to_lower")
	register(r, mapString("titleize", titleize), "titleize")
	register(r, mapString("capitalize", capitalize), "capitalize")
	register(r, trimHelper("trim", strings.Trim), "trim", "strip")
	register(r, trimHelper("trim_start", strings.TrimLeft), "trim_start", "lstrip")
	register(r, trimHelper("trim_end", strings.TrimRight), "trim_end", "rstrip")
	register(r, affixHelper("starts_with", strings.HasPrefix), "starts_with")
	register(r, affixHelper("ends_with", strings.HasSuffix), "ends_with")
	register(r, joinHelper, "join", "implode")
	register(r, splitHelper, "split", "explode")
	register(r, replaceHelper, "replace")
	register(r, repeatHelper, "repeat")
	register(r, escapeHelper, "escape")
	register(r, defaultHelper, "default")
	register(r, toJSONHelper, "to_json")
}

func mapString(name string, fn func(string) string) handlebars.HelperFunc {
	return func(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
		s, _, err := subject(name, args, cb)
		if err != nil {
			return value.Undefined(), err
		}
		return value.String(fn(s)), nil
	}
}

// titleize builds a Caser per call since Casers are stateful
func titleize(s string) string {
	return cases.Title(language.Und).String(s)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// trimHelper strips whitespace, or the characters given as second argument
func trimHelper(name string, fn func(s, cutset string) string) handlebars.HelperFunc {
	return func(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
		s, rest, err := subject(name, args, cb)
		if err != nil {
			return value.Undefined(), err
		}
		return value.String(fn(s, optString(rest, 0, spaceChars))), nil
	}
}

func affixHelper(name string, fn func(s, affix string) bool) handlebars.HelperFunc {
	return func(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
		s, rest, err := subject(name, args, cb)
		if err != nil {
			return value.Undefined(), err
		}
		if len(rest) == 0 {
			return value.Undefined(), invalid("%s requires a string and an affix", name)
		}
		return value.Bool(fn(s, rest[0].String())), nil
	}
}

// joinHelper joins array elements. Both {{join items ", "}} and
// {{join ", " items}} are accepted; as a block the body is the separator.
func joinHelper(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
	var arr *value.Array
	sep := ","
	switch {
	case cb.IsBlock():
		if len(args) == 0 || !args[0].IsArray() {
			return value.Undefined(), invalid("#join requires an array")
		}
		body, err := cb.Fn(value.Undefined())
		if err != nil {
			return value.Undefined(), err
		}
		arr, sep = args[0].Array(), body
	case len(args) >= 1 && args[0].IsArray():
		arr, sep = args[0].Array(), optString(args, 1, sep)
	case len(args) == 2 && args[1].IsArray():
		arr, sep = args[1].Array(), args[0].String()
	default:
		return value.Undefined(), invalid("join requires an array and a separator")
	}

	parts := make([]string, 0, arr.Len())
	for _, el := range arr.Values() {
		parts = append(parts, el.String())
	}
	return value.String(strings.Join(parts, sep)), nil
}

// splitHelper splits on a separator, a space by default. An optional third
// argument limits the number of splits.
func splitHelper(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
	s, rest, err := subject("split", args, cb)
	if err != nil {
		return value.Undefined(), err
	}
	sep := optString(rest, 0, " ")
	n := optInt(rest, 1, -1)
	if n >= 0 {
		n++
	}

	arr := value.NewArray()
	for _, part := range strings.SplitN(s, sep, n) {
		arr.Append(value.String(part))
	}
	return value.ArrayOf(arr), nil
}

func replaceHelper(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
	s, rest, err := subject("replace", args, cb)
	if err != nil {
		return value.Undefined(), err
	}
	if len(rest) < 2 {
		return value.Undefined(), invalid("replace requires a string, a pattern and a replacement")
	}
	return value.String(strings.Replace(s, rest[0].String(), rest[1].String(), optInt(rest, 2, -1))), nil
}

func repeatHelper(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
	s, rest, err := subject("repeat", args, cb)
	if err != nil {
		return value.Undefined(), err
	}
	n := optInt(rest, 0, 1)
	if n < 0 {
		n = 0
	}
	if len(s) > 0 && n > MaxRepeatBytes/len(s) {
		return value.Undefined(), invalid("repeat output exceeds %d bytes", MaxRepeatBytes)
	}
	return value.String(strings.Repeat(s, n)), nil
}

// escapeHelper HTML-escapes its subject once. The result is not escaped again.
func escapeHelper(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
	s, _, err := subject("escape", args, cb)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Safe(handlebars.EscapeExpression(s)), nil
}

// defaultHelper returns its second argument when the first is missing or empty
func defaultHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	if len(args) != 2 {
		return value.Undefined(), invalid("default requires a value and a fallback")
	}
	v := args[0]
	if v.IsUndefined() || v.IsNull() || (v.IsString() && v.Str() == "") {
		return args[1], nil
	}
	return v, nil
}

// toJSONHelper encodes its argument as JSON, indented with indent=true
func toJSONHelper(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
	if len(args) != 1 {
		return value.Undefined(), invalid("to_json requires one argument")
	}
	if cb.Hash.Find("indent").Truthy() {
		return value.String(strings.TrimRight(string(value.ToPrettyJSON(args[0])), "\n")), nil
	}
	return value.String(string(value.ToJSON(args[0]))), nil
}
