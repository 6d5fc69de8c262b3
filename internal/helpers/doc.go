// Package helpers provides optional helper libraries for the handlebars engine.
//
// Example usage:
//
//	engine := handlebars.New()
//	helpers.RegisterAll(engine, cel.NewEvaluator())
//
//	ctx, _ := value.FromJSON([]byte(`{"title": "release notes", "tags": ["go", "hbs"]}`))
//	out, _ := engine.Render(`{{titleize title}}: {{join tags ", "}}`, ctx, handlebars.RenderOptions{})
//	// Release Notes: go, hbs
//
// Libraries:
//   - Logic: and, or, not, eq, ne, gt, gte, lt, lte, increment
//   - Antora: detag, relativize, year
//   - Strings: uppercase, lowercase, titleize, capitalize, trim, trim_start, trim_end,
//     starts_with, ends_with, join, split, replace, repeat, escape, default, to_json
//   - Containers: size, keys, values, first, last, reverse, contains, get, sort
//   - CEL: cel
package helpers
