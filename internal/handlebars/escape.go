package handlebars

import (
	"strings"

	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

// EscapeExpression replaces the HTML special characters & < > " ' ` = with
// their entity forms
func EscapeExpression(s string) string {
	return htmlReplacer.Replace(s)
}

// formatValue writes the output form of v. Safe strings are never escaped.
func formatValue(w *sink, v value.Value, noEscape bool) {
	switch {
	case v.IsUndefined(), v.IsNull(), v.IsFunction():
		return
	case v.IsSafeString() || noEscape:
		w.WriteString(v.String())
	default:
		w.WriteString(EscapeExpression(v.String()))
	}
}
