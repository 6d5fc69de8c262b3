// Package cel provides a CEL (Common Expression Language) evaluator for template values.
//
// CEL is a non-Turing complete expression language that provides fast, safe evaluation
// of conditions and computed values inside templates. Compiled programs are cached
// per expression text.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	this, _ := value.FromJSON([]byte(`{"priority": "high", "score": 0.95}`))
//
//	result, err := evaluator.Evaluate(ctx, "this.priority == 'high' && this.score > 0.9", cel.Vars{This: this})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	matched := result.Bool() // true
//
// Variables:
//   - this: the current template context
//   - root: the top-level render context
//   - hash: the key=value arguments of the helper call
//
// Supported operations:
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - String operations: contains, startsWith, endsWith, matches
//   - Arithmetic: +, -, *, /, %
//   - List operations: in, size
//   - Map access: this.field, this["field"]
package cel
