// Package partials loads partial libraries for the handlebars engine.
//
// A library is a map from partial name to template text. Libraries come from
// a directory tree of .hbs and .handlebars files, where the name is the path
// relative to the root without its extension, or from a Redis hash where each
// field is a partial name.
//
// Example usage:
//
//	loader := partials.NewLoader(logger)
//	lib, err := loader.LoadDir("./templates/partials")
//	if err != nil {
//	    // lib still holds every file that could be read
//	    logger.Warn("some partials failed to load", zap.Error(err))
//	}
//	partials.Register(engine, lib)
package partials
