package helpers

import (
	"context"

	"github.com/aescanero/dago-hbs-renderer/internal/eval/cel"
	"github.com/aescanero/dago-hbs-renderer/internal/handlebars"
	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// RegisterCEL registers the cel helper.
//
// {{cel "this.count * 2"}} writes the expression result. As a block,
// {{#cel "this.count > 2"}}many{{else}}few{{/cel}} renders the main section
// when the result is truthy.
func RegisterCEL(r Registrar, evaluator *cel.Evaluator) {
	r.RegisterHelper("cel", func(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
		if len(args) != 1 || !args[0].IsString() {
			return value.Undefined(), invalid("cel requires one expression string")
		}

		res, err := evaluator.Evaluate(context.Background(), args[0].Str(), cel.Vars{
			This: cb.Context,
			Root: cb.Data.Find("root"),
			Hash: cb.Hash,
		})
		if err != nil {
			return value.Undefined(), err
		}

		if !cb.IsBlock() {
			return res, nil
		}
		if res.Truthy() {
			return value.Undefined(), cb.Write(value.Undefined())
		}
		return value.Undefined(), cb.WriteInverse(value.Undefined())
	})
}
