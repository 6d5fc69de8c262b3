package cel

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// Variables visible to expressions
const (
	VarThis = "this"
	VarRoot = "root"
	VarHash = "hash"
)

// Evaluator evaluates CEL expressions against template values
type Evaluator struct {
	env   *cel.Env
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new CEL evaluator
func NewEvaluator() *Evaluator {
	env, err := cel.NewEnv(
		cel.Variable(VarThis, cel.DynType),
		cel.Variable(VarRoot, cel.DynType),
		cel.Variable(VarHash, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create CEL environment: %v", err))
	}

	return &Evaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}
}

// Vars holds the template values bound to the expression variables
type Vars struct {
	This value.Value
	Root value.Value
	Hash *value.Object
}

func (v Vars) activation() map[string]any {
	hash := map[string]any{}
	if v.Hash != nil {
		hash = value.ToGo(value.ObjectOf(v.Hash)).(map[string]any)
	}
	return map[string]any{
		VarThis: value.ToGo(v.This),
		VarRoot: value.ToGo(v.Root),
		VarHash: hash,
	}
}

// Evaluate evaluates a CEL expression with the given variables
func (e *Evaluator) Evaluate(ctx context.Context, expression string, vars Vars) (value.Value, error) {
	program, err := e.getProgram(expression)
	if err != nil {
		return value.Undefined(), fmt.Errorf("failed to compile expression: %w", err)
	}

	out, _, err := program.ContextEval(ctx, vars.activation())
	if err != nil {
		return value.Undefined(), fmt.Errorf("evaluation failed: %w", err)
	}
	return fromCEL(out)
}

// getProgram gets a compiled program from cache or compiles it
func (e *Evaluator) getProgram(expression string) (cel.Program, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if program, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if program, ok := e.cache[expression]; ok {
		return program, nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("parse error: %w", issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program generation error: %w", err)
	}

	e.cache[expression] = program
	return program, nil
}

// ValidateExpression compiles an expression without evaluating it
func (e *Evaluator) ValidateExpression(expression string) error {
	_, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return issues.Err()
	}
	return nil
}

// CacheSize returns the number of compiled programs
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// ClearCache clears the compiled program cache
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]cel.Program)
}

// fromCEL converts an evaluation result into a template value.
// Map keys are sorted since CEL maps carry no order.
func fromCEL(v ref.Val) (value.Value, error) {
	switch t := v.(type) {
	case types.Null:
		return value.Null(), nil
	case types.Bool:
		return value.Bool(bool(t)), nil
	case types.Int:
		return value.Int(int64(t)), nil
	case types.Uint:
		return value.Int(int64(t)), nil
	case types.Double:
		return value.Float(float64(t)), nil
	case types.String:
		return value.String(string(t)), nil
	case traits.Mapper:
		type entry struct {
			key string
			val value.Value
		}
		var entries []entry
		it := t.Iterator()
		for it.HasNext() == types.True {
			k := it.Next()
			el, err := fromCEL(t.Get(k))
			if err != nil {
				return value.Undefined(), err
			}
			entries = append(entries, entry{key: fmt.Sprint(k.Value()), val: el})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
		obj := value.NewObject()
		for _, en := range entries {
			obj.Set(en.key, en.val)
		}
		return value.ObjectOf(obj), nil
	case traits.Lister:
		arr := value.NewArray()
		it := t.Iterator()
		for it.HasNext() == types.True {
			el, err := fromCEL(it.Next())
			if err != nil {
				return value.Undefined(), err
			}
			arr.Append(el)
		}
		return value.ArrayOf(arr), nil
	case *types.Err:
		return value.Undefined(), t
	}
	return value.FromGo(v.Value()), nil
}
