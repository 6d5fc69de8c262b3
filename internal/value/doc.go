// Package value provides the hierarchical data model rendered by the handlebars engine.
//
// A Value is a closed sum type over the kinds undefined, null, boolean, integer,
// float, string, safe string, array, object and function. Objects keep insertion
// order and may overlay a parent object, which is how the engine stacks data
// frames and block parameters without copying the user's context.
//
// Example usage:
//
//	ctx, err := value.FromJSON([]byte(`{"name": "World", "items": [1, 2, 3]}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	name, _ := ctx.Object().Get("name")
//	fmt.Println(name.String()) // World
//
//	frame := value.NewFrame(ctx.Object())
//	frame.Set("name", value.String("Gopher"))
//	// frame shadows "name" and falls through to the parent for "items"
//
// Values can also be built from plain Go data with FromGo, and decoded from
// YAML with FromYAML. Both JSON and YAML decoding preserve object key order.
package value
