package handlebars

import (
	"io"
	"strings"

	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// sink is an error-sticky output writer
type sink struct {
	w   io.Writer
	err error
}

func newSink(w io.Writer) *sink {
	return &sink{w: w}
}

func (s *sink) WriteString(str string) {
	if s.err != nil || str == "" {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

func (s *sink) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.w.Write(p)
	s.err = err
	return n, err
}

// BlockOptions overrides the data frame and binds block parameters when a
// helper renders one of its sections
type BlockOptions struct {
	Data        *value.Object
	BlockParams []value.Value
}

// bodyFunc renders a block section into w
type bodyFunc func(w *sink, ctx value.Value, opt BlockOptions) error

// Callback carries the invocation state of one helper call.
// It must not be retained after the helper returns.
type Callback struct {
	// Name is the helper name as written in the template
	Name string
	// Hash holds the key=value arguments
	Hash *value.Object
	// IDs holds the source path of each positional argument, empty for
	// literals and sub-expressions
	IDs []string
	// BlockParams are the names declared with "as |a b|"
	BlockParams []string
	// Context is the current context value
	Context value.Value
	// Data is the current data frame
	Data *value.Object

	state   *renderState
	out     *sink
	fn      bodyFunc
	inverse bodyFunc
	block   bool
}

// IsBlock reports whether the helper was invoked as a block
func (cb *Callback) IsBlock() bool { return cb.block }

// Out returns the render output. Writes land at the position of the tag.
func (cb *Callback) Out() io.Writer { return cb.out }

// Fn renders the main section of the block and returns it
func (cb *Callback) Fn(ctx value.Value, opts ...BlockOptions) (string, error) {
	return cb.capture(cb.fn, ctx, opts)
}

// Write renders the main section of the block into the output
func (cb *Callback) Write(ctx value.Value, opts ...BlockOptions) error {
	return cb.call(cb.out, cb.fn, ctx, opts)
}

// Inverse renders the else section of the block and returns it
func (cb *Callback) Inverse(ctx value.Value, opts ...BlockOptions) (string, error) {
	return cb.capture(cb.inverse, ctx, opts)
}

// WriteInverse renders the else section of the block into the output
func (cb *Callback) WriteInverse(ctx value.Value, opts ...BlockOptions) error {
	return cb.call(cb.out, cb.inverse, ctx, opts)
}

// Log forwards to the engine logger
func (cb *Callback) Log(level value.Value, args ...value.Value) {
	if cb.state != nil && cb.state.logFn != nil {
		cb.state.logFn(level, args)
	}
}

// LookupProperty resolves field against obj the way the lookup helper does
func (cb *Callback) LookupProperty(obj, field value.Value) (value.Value, bool) {
	return lookupField(obj, field)
}

func (cb *Callback) capture(body bodyFunc, ctx value.Value, opts []BlockOptions) (string, error) {
	var sb strings.Builder
	w := newSink(&sb)
	if err := cb.call(w, body, ctx, opts); err != nil {
		return "", err
	}
	return sb.String(), w.err
}

func (cb *Callback) call(w *sink, body bodyFunc, ctx value.Value, opts []BlockOptions) error {
	if body == nil {
		return nil
	}
	if ctx.IsUndefined() {
		ctx = cb.Context
	}
	var opt BlockOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	return body(w, ctx, opt)
}

// swap exchanges the main and else sections
func (cb *Callback) swap() {
	cb.fn, cb.inverse = cb.inverse, cb.fn
}
