package helpers

import (
	"sort"
	"strings"

	"github.com/aescanero/dago-hbs-renderer/internal/handlebars"
	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// RegisterContainers registers the array and object helpers
func RegisterContainers(r Registrar) {
	register(r, sizeHelper, "size", "len")
	register(r, keysHelper, "keys")
	register(r, valuesHelper, "values")
	register(r, firstHelper, "first", "head")
	register(r, lastHelper, "last", "tail")
	register(r, reverseHelper, "reverse", "reversed")
	register(r, containsHelper, "contains", "has", "includes")
	register(r, getHelper, "get", "get_or")
	register(r, sortHelper, "sort")
}

func one(name string, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Undefined(), invalid("%s requires one argument", name)
	}
	return args[0], nil
}

// sizeHelper counts array elements, object keys or string bytes
func sizeHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	v, err := one("size", args)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Int(int64(v.Len())), nil
}

func keysHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	v, err := one("keys", args)
	if err != nil {
		return value.Undefined(), err
	}
	arr := value.NewArray()
	switch {
	case v.IsObject():
		for _, k := range v.Object().Keys() {
			arr.Append(value.String(k))
		}
	case v.IsArray():
		for i := 0; i < v.Len(); i++ {
			arr.Append(value.Int(int64(i)))
		}
	}
	return value.ArrayOf(arr), nil
}

func valuesHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	v, err := one("values", args)
	if err != nil {
		return value.Undefined(), err
	}
	switch {
	case v.IsObject():
		arr := value.NewArray()
		v.Object().Range(func(_ string, el value.Value) bool {
			arr.Append(el)
			return true
		})
		return value.ArrayOf(arr), nil
	case v.IsArray():
		return v, nil
	}
	return value.ArrayOf(value.NewArray()), nil
}

func firstHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	v, err := one("first", args)
	if err != nil {
		return value.Undefined(), err
	}
	return element(v, 0), nil
}

func lastHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	v, err := one("last", args)
	if err != nil {
		return value.Undefined(), err
	}
	return element(v, v.Len()-1), nil
}

// element indexes arrays by element and strings by rune
func element(v value.Value, i int) value.Value {
	switch {
	case v.IsArray():
		el, _ := v.Array().At(i)
		return el
	case v.IsString():
		runes := []rune(v.Str())
		if i >= len(runes) {
			i = len(runes) - 1
		}
		if i < 0 {
			return value.Undefined()
		}
		return value.String(string(runes[i]))
	}
	return value.Undefined()
}

func reverseHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	v, err := one("reverse", args)
	if err != nil {
		return value.Undefined(), err
	}
	switch {
	case v.IsArray():
		items := v.Array().Values()
		out := make([]value.Value, len(items))
		for i, el := range items {
			out[len(items)-1-i] = el
		}
		return value.ArrayOf(value.NewArray(out...)), nil
	case v.IsString():
		runes := []rune(v.Str())
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return value.String(string(runes)), nil
	}
	return v, nil
}

// containsHelper tests substrings, array elements or object keys
func containsHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	if len(args) != 2 {
		return value.Undefined(), invalid("contains requires a container and an item")
	}
	c, item := args[0], args[1]
	switch {
	case c.IsString():
		return value.Bool(strings.Contains(c.Str(), item.String())), nil
	case c.IsArray():
		for _, el := range c.Array().Values() {
			if el.Equal(item) {
				return value.Bool(true), nil
			}
		}
	case c.IsObject():
		return value.Bool(c.Object().Exists(item.String())), nil
	}
	return value.Bool(false), nil
}

// getHelper looks up a key or path, returning the optional third argument
// when nothing is found
func getHelper(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return value.Undefined(), invalid("get requires a container, a key and an optional default")
	}
	if v, ok := cb.LookupProperty(args[0], args[1]); ok {
		return v, nil
	}
	if len(args) == 3 {
		return args[2], nil
	}
	return value.Undefined(), nil
}

// sortHelper sorts an array of scalars, numbers before strings. With a by=
// hash argument it sorts objects by that field.
func sortHelper(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
	v, err := one("sort", args)
	if err != nil {
		return value.Undefined(), err
	}
	if !v.IsArray() {
		return v, nil
	}

	by := cb.Hash.Find("by")
	key := func(el value.Value) value.Value {
		if by.IsString() {
			k, _ := cb.LookupProperty(el, by)
			return k
		}
		return el
	}

	items := append([]value.Value(nil), v.Array().Values()...)
	sort.SliceStable(items, func(i, j int) bool {
		return less(key(items[i]), key(items[j]))
	})
	return value.ArrayOf(value.NewArray(items...)), nil
}

func less(a, b value.Value) bool {
	switch {
	case a.IsNumber() && b.IsNumber():
		return a.Float() < b.Float()
	case a.IsNumber():
		return true
	case b.IsNumber():
		return false
	default:
		return a.String() < b.String()
	}
}
