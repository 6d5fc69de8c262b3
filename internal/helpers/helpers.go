package helpers

import (
	"fmt"

	"github.com/aescanero/dago-hbs-renderer/internal/eval/cel"
	"github.com/aescanero/dago-hbs-renderer/internal/handlebars"
	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// Registrar is implemented by *handlebars.Engine
type Registrar interface {
	RegisterHelper(name string, fn handlebars.HelperFunc)
}

// RegisterAll registers every helper library. A nil evaluator leaves the
// cel helper out.
func RegisterAll(r Registrar, evaluator *cel.Evaluator) {
	RegisterLogic(r)
	RegisterAntora(r)
	RegisterStrings(r)
	RegisterContainers(r)
	if evaluator != nil {
		RegisterCEL(r, evaluator)
	}
}

func register(r Registrar, fn handlebars.HelperFunc, names ...string) {
	for _, name := range names {
		r.RegisterHelper(name, fn)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", handlebars.ErrInvalidArguments, fmt.Sprintf(format, args...))
}

// subject returns the value a string helper works on: the rendered body when
// called as a block, the first argument otherwise. rest holds the remaining
// arguments.
func subject(name string, args []value.Value, cb *handlebars.Callback) (s string, rest []value.Value, err error) {
	if cb.IsBlock() {
		s, err = cb.Fn(value.Undefined())
		return s, args, err
	}
	if len(args) == 0 {
		return "", nil, invalid("%s requires a string argument", name)
	}
	return args[0].String(), args[1:], nil
}

// optString returns rest[i] as a string, or def when it is absent
func optString(rest []value.Value, i int, def string) string {
	if i < len(rest) && !rest[i].IsUndefined() {
		return rest[i].String()
	}
	return def
}

// optInt returns rest[i] as an integer, or def when it is not a number
func optInt(rest []value.Value, i int, def int) int {
	if i < len(rest) && rest[i].IsNumber() {
		return int(rest[i].Int())
	}
	return def
}
