package helpers

import (
	"github.com/aescanero/dago-hbs-renderer/internal/handlebars"
	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// RegisterLogic registers the comparison and boolean helpers:
// and, or, not, eq, ne, gt, gte, lt, lte and increment
func RegisterLogic(r Registrar) {
	r.RegisterHelper("and", andHelper)
	r.RegisterHelper("or", orHelper)
	r.RegisterHelper("not", notHelper)
	r.RegisterHelper("eq", eqHelper)
	r.RegisterHelper("ne", neHelper)
	r.RegisterHelper("gt", compare("gt", func(a, b float64) bool { return a > b }))
	r.RegisterHelper("gte", compare("gte", func(a, b float64) bool { return a >= b }))
	r.RegisterHelper("lt", compare("lt", func(a, b float64) bool { return a < b }))
	r.RegisterHelper("lte", compare("lte", func(a, b float64) bool { return a <= b }))
	r.RegisterHelper("increment", incrementHelper)
}

func andHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	for _, a := range args {
		if !a.Truthy() {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func orHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	for _, a := range args {
		if a.Truthy() {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

// notHelper is true when any argument is falsy
func notHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	for _, a := range args {
		if !a.Truthy() {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func allEqual(args []value.Value) bool {
	for i := 1; i < len(args); i++ {
		if !args[0].Equal(args[i]) {
			return false
		}
	}
	return true
}

func eqHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	return value.Bool(allEqual(args)), nil
}

func neHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	return value.Bool(!allEqual(args)), nil
}

func compare(name string, op func(a, b float64) bool) handlebars.HelperFunc {
	return func(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
		if len(args) != 2 {
			return value.Undefined(), invalid("%s requires two arguments", name)
		}
		a, b := args[0], args[1]
		if a.IsString() && b.IsString() {
			// Strings compare lexically
			c := 0
			switch {
			case a.Str() < b.Str():
				c = -1
			case a.Str() > b.Str():
				c = 1
			}
			return value.Bool(op(float64(c), 0)), nil
		}
		if !a.IsNumber() || !b.IsNumber() {
			return value.Bool(false), nil
		}
		return value.Bool(op(a.Float(), b.Float())), nil
	}
}

// incrementHelper adds one to a number. Falsy values count as zero.
func incrementHelper(args []value.Value, _ *handlebars.Callback) (value.Value, error) {
	if len(args) != 1 {
		return value.Undefined(), invalid("increment requires one argument")
	}
	v := args[0]
	switch {
	case !v.Truthy():
		return value.Int(1), nil
	case v.IsInt():
		return value.Int(v.Int() + 1), nil
	case v.IsFloat():
		return value.Float(v.Float() + 1), nil
	case v.IsString():
		return value.String(v.Str() + "1"), nil
	default:
		return value.Undefined(), invalid("cannot increment %s", v.Kind())
	}
}
