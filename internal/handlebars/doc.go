// Package handlebars implements a Handlebars template engine.
//
// Templates are interpreted directly from their text: every Render call scans
// the template, matches blocks and dispatches tags to helpers, partials and
// decorators. Nothing is compiled or cached.
//
// Example usage:
//
//	engine := handlebars.New(handlebars.WithLogger(logger))
//
//	engine.RegisterPartial("item", "<li>{{name}}</li>")
//	engine.RegisterHelper("shout", func(args []value.Value, cb *handlebars.Callback) (value.Value, error) {
//	    if len(args) != 1 {
//	        return value.Undefined(), handlebars.ErrInvalidArguments
//	    }
//	    return value.String(strings.ToUpper(args[0].String()) + "!"), nil
//	})
//
//	ctx, _ := value.FromJSON([]byte(`{"title": "Fruit", "items": [{"name": "apple"}, {"name": "pear"}]}`))
//
//	out, err := engine.Render(`{{shout title}}<ul>{{#each items}}{{> item}}{{/each}}</ul>`, ctx, handlebars.RenderOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// FRUIT!<ul><li>apple</li><li>pear</li></ul>
//
// Supported syntax:
//   - Expressions: {{path}}, {{{raw}}}, {{&raw}}, {{helper arg key=value}}, (subexpressions)
//   - Blocks: {{#helper}}...{{else}}...{{/helper}}, {{^section}}...{{/section}}, as |item index|
//   - Partials: {{> name}}, {{> (dynamic)}}, {{#> layout}}fallback{{/layout}}, {{> @partial-block}}
//   - Decorators: {{#*inline "name"}}...{{/inline}}
//   - Raw blocks: {{{{raw}}}}...{{{{/raw}}}}
//   - Comments, whitespace control with ~ and \{{escaped}} tags
//
// Recoverable template problems, such as a mismatched closing tag, are
// reported inline in the output as a bracketed message. Helper failures abort
// the render with a *RenderError.
package handlebars
