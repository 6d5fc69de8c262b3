package helpers

import (
	"path"
	"strings"
	"time"

	"github.com/aescanero/dago-hbs-renderer/internal/handlebars"
	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// now is replaced in tests
var now = time.Now

// RegisterAntora registers the site helpers of the Antora default UI:
// detag, relativize and year
func RegisterAntora(r Registrar) {
	r.RegisterHelper("detag", detagHelper)
	r.RegisterHelper("relativize", relativizeHelper)
	r.RegisterHelper("year", yearHelper)
}

// detagHelper removes every <...> tag from a string
func detagHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	if len(args) != 1 {
		return value.Undefined(), invalid("detag requires one argument")
	}
	if !args[0].Truthy() {
		return args[0], nil
	}

	var sb strings.Builder
	inside := false
	for _, c := range args[0].String() {
		switch {
		case c == '<':
			inside = true
		case c == '>':
			inside = false
		case !inside:
			sb.WriteRune(c)
		}
	}
	return value.String(sb.String()), nil
}

func yearHelper(_ []value.Value, _ *handlebars.Callback) (value.Value, error) {
	return value.Int(int64(now().Year())), nil
}

// relativizeHelper turns a site-absolute URL into a URL relative to the
// current page. The page defaults to @root.page.url.
func relativizeHelper(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
	if len(args) == 0 || len(args) > 2 {
		return value.Undefined(), invalid("relativize requires a target and an optional page")
	}
	to := args[0]
	if !to.Truthy() {
		return value.String("#"), nil
	}
	if !to.IsString() || !strings.HasPrefix(to.Str(), "/") {
		return to, nil
	}

	root := cb.Data.Find("root")
	var from value.Value
	if len(args) == 2 {
		from = args[1]
	} else {
		from, _ = cb.LookupProperty(root, value.String("page.url"))
	}
	if !from.Truthy() {
		if sitePath, _ := cb.LookupProperty(root, value.String("site.path")); sitePath.Truthy() {
			return value.String(sitePath.String() + to.Str()), nil
		}
		return to, nil
	}

	target, hash := to.Str(), ""
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target, hash = target[:i], target[i:]
	}

	page := from.String()
	if target == page {
		switch {
		case hash != "":
			return value.String(hash), nil
		case strings.HasSuffix(target, "/"):
			return value.String("./"), nil
		default:
			return value.String(path.Base(target)), nil
		}
	}

	rel := relativePath(path.Dir(page+"."), target)
	if strings.HasSuffix(target, "/") {
		return value.String(rel + "/" + hash), nil
	}
	return value.String(rel + hash), nil
}

// relativePath returns the path from directory base to target, both absolute
func relativePath(base, target string) string {
	split := func(p string) []string {
		var segs []string
		for _, s := range strings.Split(path.Clean(p), "/") {
			if s != "" {
				segs = append(segs, s)
			}
		}
		return segs
	}
	from, to := split(base), split(target)

	common := 0
	for common < len(from) && common < len(to) && from[common] == to[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}
