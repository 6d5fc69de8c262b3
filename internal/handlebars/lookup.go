package handlebars

import (
	"strconv"
	"strings"

	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// popSegment removes the first segment of a property path.
// Bracketed segments are returned without their brackets.
func popSegment(path string) (seg, rest string, ok bool) {
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	if path == "" || path == "." {
		return "", "", false
	}

	if path[0] == '[' {
		end := strings.IndexByte(path, ']')
		if end < 0 {
			return "", "", false
		}
		seg, rest = path[1:end], path[end+1:]
		if rest == "" {
			return seg, "", true
		}
		if rest[0] != '.' && rest[0] != '/' {
			return "", "", false
		}
		return seg, rest[1:], true
	}

	if strings.HasPrefix(path, "../") {
		return "..", path[3:], true
	}

	end := strings.IndexAny(path, "./")
	if end < 0 {
		return path, "", true
	}
	if end == 0 {
		return "", "", false
	}
	return path[:end], path[end+1:], true
}

func isCurrentContext(path string) bool {
	return path == "" || path == "." || path == "this"
}

// lookupPath resolves a dotted or slashed path against v
func lookupPath(v value.Value, path string) (value.Value, bool) {
	if isCurrentContext(path) {
		return v, true
	}

	first := true
	cur := v
	for path != "" {
		seg, rest, ok := popSegment(path)
		if !ok {
			// "a." and "a/" end at the current value
			if path == "." {
				return cur, true
			}
			return value.Undefined(), false
		}
		path = rest
		if first && seg == "this" {
			first = false
			continue
		}
		first = false

		switch {
		case cur.IsObject():
			next, found := cur.Object().Get(seg)
			if !found {
				return value.Undefined(), false
			}
			cur = next
		case cur.IsArray():
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 {
				return value.Undefined(), false
			}
			next, found := cur.Array().At(idx)
			if !found {
				return value.Undefined(), false
			}
			cur = next
		default:
			return value.Undefined(), false
		}
	}
	return cur, true
}

// lookupField resolves a helper-supplied field against obj. String fields try
// the key first and then a path, integers index arrays.
func lookupField(obj, field value.Value) (value.Value, bool) {
	switch {
	case field.IsString():
		key := field.Str()
		if o := obj.Object(); o != nil {
			if v, ok := o.Get(key); ok {
				return v, true
			}
		}
		return lookupPath(obj, key)
	case field.IsInt():
		if a := obj.Array(); a != nil {
			return a.At(int(field.Int()))
		}
		if o := obj.Object(); o != nil {
			return o.Get(strconv.FormatInt(field.Int(), 10))
		}
	}
	return value.Undefined(), false
}

// appendContextPath extends a data frame context path with an argument id.
// Ids that are not paths leave the context path unchanged.
func appendContextPath(contextPath value.Value, id string) string {
	cp := contextPath.Str()
	if id == "" || id[0] == '@' {
		return cp
	}
	id = strings.TrimPrefix(id, "./")
	if id == "this" || id == "." {
		return cp
	}
	id = strings.TrimPrefix(id, "this.")
	for strings.HasPrefix(id, "../") || id == ".." {
		cp = dropLastSegment(cp)
		id = strings.TrimPrefix(strings.TrimPrefix(id, ".."), "/")
	}
	id = strings.ReplaceAll(id, "/", ".")
	switch {
	case id == "":
		return cp
	case cp == "":
		return id
	default:
		return cp + "." + id
	}
}

func dropLastSegment(cp string) string {
	if i := strings.LastIndexByte(cp, '.'); i >= 0 {
		return cp[:i]
	}
	return ""
}
