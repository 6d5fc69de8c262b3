package handlebars

import (
	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

func registerBuiltins(e *Engine) {
	e.helpers["if"] = ifHelper
	e.helpers["unless"] = unlessHelper
	e.helpers["with"] = withHelper
	e.helpers["each"] = eachHelper
	e.helpers["lookup"] = lookupHelper
	e.helpers["log"] = logHelper
	e.helpers["helperMissing"] = helperMissing
	e.helpers["blockHelperMissing"] = blockHelperMissing
}

// resolveArg calls function arguments with the current context
func resolveArg(v value.Value, cb *Callback) (value.Value, error) {
	if v.IsFunction() {
		return v.Call(cb.Context)
	}
	return v, nil
}

func conditional(args []value.Value, cb *Callback, name string, negate bool) (value.Value, error) {
	if len(args) != 1 {
		return value.Undefined(), invalidArguments("#%s requires exactly one argument", name)
	}
	cond, err := resolveArg(args[0], cb)
	if err != nil {
		return value.Undefined(), err
	}

	includeZero := cb.Hash.Find("includeZero").Truthy()
	falsy := (!includeZero && !cond.Truthy()) || cond.IsEmpty()
	if falsy != negate {
		return value.Undefined(), cb.WriteInverse(cb.Context)
	}
	return value.Undefined(), cb.Write(cb.Context)
}

func ifHelper(args []value.Value, cb *Callback) (value.Value, error) {
	return conditional(args, cb, "if", false)
}

func unlessHelper(args []value.Value, cb *Callback) (value.Value, error) {
	return conditional(args, cb, "unless", true)
}

// childFrame creates a data frame with contextPath extended by id
func childFrame(cb *Callback, id string) *value.Object {
	data := value.NewFrame(cb.Data)
	if id != "" {
		data.Set("contextPath", value.String(appendContextPath(cb.Data.Find("contextPath"), id)))
	}
	return data
}

func firstID(cb *Callback) string {
	if len(cb.IDs) > 0 {
		return cb.IDs[0]
	}
	return ""
}

func withHelper(args []value.Value, cb *Callback) (value.Value, error) {
	if len(args) != 1 {
		return value.Undefined(), invalidArguments("#with requires exactly one argument")
	}
	ctx, err := resolveArg(args[0], cb)
	if err != nil {
		return value.Undefined(), err
	}

	if ctx.IsEmpty() {
		return value.Undefined(), cb.WriteInverse(cb.Context)
	}
	return value.Undefined(), cb.Write(ctx, BlockOptions{
		Data:        childFrame(cb, firstID(cb)),
		BlockParams: []value.Value{ctx},
	})
}

func eachHelper(args []value.Value, cb *Callback) (value.Value, error) {
	if len(args) == 0 {
		return value.Undefined(), invalidArguments("must pass iterator to #each")
	}
	ctx, err := resolveArg(args[0], cb)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Undefined(), iterate(ctx, firstID(cb), cb)
}

// iterate renders the main section once per element of ctx
func iterate(ctx value.Value, id string, cb *Callback) error {
	contextPath := ""
	if id != "" {
		contextPath = appendContextPath(cb.Data.Find("contextPath"), id)
	}

	exec := func(item, key value.Value, index int, last bool) error {
		data := value.NewFrame(cb.Data)
		data.Set("key", key)
		data.Set("index", value.Int(int64(index)))
		data.Set("first", value.Bool(index == 0))
		data.Set("last", value.Bool(last))
		if contextPath != "" {
			data.Set("contextPath", value.String(contextPath+"."+key.String()))
		}
		return cb.Write(item, BlockOptions{
			Data:        data,
			BlockParams: []value.Value{item, key},
		})
	}

	n := 0
	switch {
	case ctx.IsArray():
		items := ctx.Array().Values()
		for i, item := range items {
			if err := exec(item, value.Int(int64(i)), i, i == len(items)-1); err != nil {
				return err
			}
		}
		n = len(items)
	case ctx.IsObject():
		obj := ctx.Object()
		total := obj.Len()
		var err error
		obj.Range(func(key string, item value.Value) bool {
			err = exec(item, value.String(key), n, n == total-1)
			n++
			return err == nil
		})
		if err != nil {
			return err
		}
	}

	if n == 0 {
		return cb.WriteInverse(cb.Context)
	}
	return nil
}

func lookupHelper(args []value.Value, cb *Callback) (value.Value, error) {
	if len(args) != 2 {
		return value.Undefined(), invalidArguments("lookup requires an object and a field")
	}
	obj := args[0]
	if !obj.Truthy() {
		return obj, nil
	}
	v, _ := cb.LookupProperty(obj, args[1])
	return v, nil
}

func logHelper(args []value.Value, cb *Callback) (value.Value, error) {
	level := value.Int(1)
	if l, ok := cb.Hash.Get("level"); ok && !l.IsNull() {
		level = l
	} else if l, ok := cb.Data.Get("level"); ok && !l.IsNull() {
		level = l
	}
	cb.Log(level, args...)
	return value.Undefined(), nil
}

func helperMissing(args []value.Value, cb *Callback) (value.Value, error) {
	if len(args) == 0 {
		return value.Undefined(), nil
	}
	return value.Undefined(), missingHelper(cb.Name)
}

func blockHelperMissing(args []value.Value, cb *Callback) (value.Value, error) {
	var ctx value.Value
	if len(args) > 0 {
		ctx = args[0]
	}

	switch {
	case ctx.IsBool() && ctx.Bool():
		return value.Undefined(), cb.Write(cb.Context)
	case ctx.IsBool(), ctx.IsNull(), ctx.IsUndefined():
		return value.Undefined(), cb.WriteInverse(cb.Context)
	case ctx.IsArray():
		if ctx.Len() == 0 {
			return value.Undefined(), cb.WriteInverse(cb.Context)
		}
		return value.Undefined(), iterate(ctx, cb.Name, cb)
	default:
		return value.Undefined(), cb.Write(ctx, BlockOptions{Data: childFrame(cb, cb.Name)})
	}
}
