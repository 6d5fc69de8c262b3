package handlebars

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingHelper is returned when an unknown helper is called with arguments
	ErrMissingHelper = errors.New("missing helper")

	// ErrInvalidArguments is returned by helpers given the wrong arguments
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrNotDefined is returned in strict mode for names that resolve to nothing
	ErrNotDefined = errors.New("not defined")

	// ErrMaxDepth is returned when nested blocks and partials exceed the engine limit
	ErrMaxDepth = errors.New("maximum render depth exceeded")
)

// RenderError is a fatal error that aborted a render
type RenderError struct {
	// Helper is the helper that failed, if any
	Helper string
	// Tag is the text of the tag being rendered
	Tag string
	Err error
}

func (e *RenderError) Error() string {
	switch {
	case e.Helper != "" && e.Tag != "":
		return fmt.Sprintf("helper %q in %s: %v", e.Helper, e.Tag, e.Err)
	case e.Tag != "":
		return fmt.Sprintf("%s: %v", e.Tag, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// wrapRenderError attaches tag information unless err already carries it
func wrapRenderError(err error, helper string, t tag) error {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{Helper: helper, Tag: t.text, Err: err}
}

func missingHelper(name string) error {
	return fmt.Errorf("%w: %q", ErrMissingHelper, name)
}

func notDefined(name string) error {
	return fmt.Errorf("%q %w", name, ErrNotDefined)
}

func invalidArguments(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArguments, fmt.Sprintf(format, args...))
}

// Inline diagnostics spliced into the output for recoverable problems

func diagMismatchedClose(closeTag, block string) string {
	return fmt.Sprintf(`[mismatched closing tag: "%s" for block name "%s"]`, closeTag, block)
}

func diagMissingClose(block string) string {
	return fmt.Sprintf(`[missing closing tag for block "%s"]`, block)
}

func diagUnmatchedClose(closeTag string) string {
	return fmt.Sprintf(`[unmatched closing tag "%s"]`, closeTag)
}

func diagUndefinedDecorator(name, t string) string {
	return fmt.Sprintf(`[undefined decorator "%s" in "%s"]`, name, t)
}

func diagInvalidDecorator(expr, t string) string {
	return fmt.Sprintf(`[invalid decorator expression "%s" in "%s"]`, expr, t)
}

func diagUndefinedPartial(t string) string {
	return fmt.Sprintf(`[undefined partial in "%s"]`, t)
}
